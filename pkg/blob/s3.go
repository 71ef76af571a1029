package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

// createdAtMeta is the user metadata entry holding the original upload time,
// which S3 does not track on its own.
const createdAtMeta = "created-at"

// S3Config holds configuration for the S3 blob store.
type S3Config struct {
	// Bucket is the S3 bucket name.
	Bucket string

	// Region is the AWS region (optional, uses SDK default if empty).
	Region string

	// Endpoint is the S3 endpoint URL (optional, for MinIO and other
	// S3-compatible services).
	Endpoint string

	// AccessKey and SecretKey select static credentials. When empty the
	// SDK default credential chain is used.
	AccessKey string
	SecretKey string

	// KeyPrefix is prepended to all object keys (e.g., "documents/").
	KeyPrefix string

	// ForcePathStyle forces path-style addressing (required for MinIO).
	ForcePathStyle bool
}

// S3Store is an S3-backed implementation of Store.
type S3Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string

	mu     sync.RWMutex
	closed bool
}

// NewS3Store creates a store around an existing client.
func NewS3Store(client *s3.Client, cfg S3Config) *S3Store {
	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: prefix,
	}
}

// NewS3StoreFromConfig builds the S3 client from cfg.
func NewS3StoreFromConfig(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return NewS3Store(client, cfg), nil
}

func (s *S3Store) objectKey(p paths.Path) string {
	return s.keyPrefix + p.ObjectKey()
}

// listPrefix is the key prefix of everything beneath folder p.
func (s *S3Store) listPrefix(p paths.Path) string {
	if p.IsRoot() {
		return s.keyPrefix
	}
	return s.objectKey(p) + "/"
}

func (s *S3Store) pathOf(key string) paths.Path {
	key = strings.TrimPrefix(key, s.keyPrefix)
	return paths.FromObjectKey(strings.TrimSuffix(key, "/"))
}

func (s *S3Store) ensureOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return vaulterr.NewRemoteUnavailableError("s3 store", errors.New("store closed"))
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, prefix paths.Path) (Listing, error) {
	if err := s.ensureOpen(); err != nil {
		return Listing{}, err
	}

	listPrefix := s.listPrefix(prefix)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(listPrefix),
		Delimiter: aws.String("/"),
	})

	var listing Listing
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return Listing{}, mapError("s3 list objects", prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Console-created folder placeholders end with a slash.
			if key == listPrefix || strings.HasSuffix(key, "/") {
				continue
			}
			p := s.pathOf(key)
			// Listings carry no user metadata; Stat and Get report the
			// kept creation time.
			modified := aws.ToTime(obj.LastModified)
			listing.Items = append(listing.Items, Object{
				Path:        p,
				Size:        aws.ToInt64(obj.Size),
				ContentType: ContentTypeByName(p.Base()),
				CreatedAt:   modified,
				UpdatedAt:   modified,
			})
		}

		for _, cp := range page.CommonPrefixes {
			listing.SubPrefixes = append(listing.SubPrefixes, s.pathOf(aws.ToString(cp.Prefix)))
		}
	}

	return listing, nil
}

func (s *S3Store) Get(ctx context.Context, p paths.Path) ([]byte, Object, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, Object{}, err
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(p)),
	})
	if err != nil {
		return nil, Object{}, mapError("s3 get object", p, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Object{}, vaulterr.NewRemoteUnavailableError("read s3 object body", err)
	}

	modified := aws.ToTime(resp.LastModified)
	created := createdAt(resp.Metadata, modified)

	contentType := aws.ToString(resp.ContentType)
	if contentType == "" {
		contentType = DetectContentType(p.Base(), data)
	}

	return data, Object{
		Path:        p,
		Size:        int64(len(data)),
		ContentType: contentType,
		CreatedAt:   created,
		UpdatedAt:   modified,
	}, nil
}

func (s *S3Store) Stat(ctx context.Context, p paths.Path) (Object, error) {
	if err := s.ensureOpen(); err != nil {
		return Object{}, err
	}

	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(p)),
	})
	if err != nil {
		return Object{}, mapError("s3 head object", p, err)
	}

	modified := aws.ToTime(resp.LastModified)
	contentType := aws.ToString(resp.ContentType)
	if contentType == "" {
		contentType = ContentTypeByName(p.Base())
	}

	return Object{
		Path:        p,
		Size:        aws.ToInt64(resp.ContentLength),
		ContentType: contentType,
		CreatedAt:   createdAt(resp.Metadata, modified),
		UpdatedAt:   modified,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, p paths.Path, data []byte) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	created := time.Now().UTC()
	if prev, err := s.Stat(ctx, p); err == nil {
		created = prev.CreatedAt
	} else if !vaulterr.IsNotFound(err) {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(p)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(DetectContentType(p.Base(), data)),
		Metadata: map[string]string{
			createdAtMeta: created.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return mapError("s3 put object", p, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, p paths.Path) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(p)),
	})
	if err != nil && !isNotFoundError(err) {
		return mapError("s3 delete object", p, err)
	}
	return nil
}

// HealthCheck verifies the bucket is reachable.
func (s *S3Store) HealthCheck(ctx context.Context) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return mapError("s3 head bucket", paths.Root, err)
	}
	return nil
}

func (s *S3Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// createdAt reads the creation time kept in the object's user metadata.
// Objects written by other tools fall back to their modification time.
func createdAt(meta map[string]string, fallback time.Time) time.Time {
	if raw, ok := meta[createdAtMeta]; ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t
		}
	}
	return fallback
}

func mapError(op string, p paths.Path, err error) error {
	if isNotFoundError(err) {
		return vaulterr.NewNotFoundError(p.String(), "blob")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return vaulterr.NewRemoteUnavailableError(op, err)
}

// isNotFoundError returns true if the error indicates the object doesn't exist.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}

	return false
}

// Ensure S3Store implements Store.
var _ Store = (*S3Store)(nil)
