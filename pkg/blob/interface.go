// Package blob provides the flat, path-addressed object stores that hold
// document contents. Folders do not exist at this layer; they are derived
// from common key prefixes.
package blob

import (
	"context"
	"mime"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mwantia/docsync/pkg/paths"
)

// Sentinel is the zero-byte marker object that keeps an otherwise empty
// folder listable.
const Sentinel = ".keep"

// Object describes one stored blob.
type Object struct {
	Path        paths.Path `json:"path"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (o Object) Name() string {
	return o.Path.Base()
}

// IsSentinel reports whether o is a folder marker.
func (o Object) IsSentinel() bool {
	return o.Name() == Sentinel
}

// Listing is the immediate content of one prefix.
type Listing struct {
	Items       []Object
	SubPrefixes []paths.Path
}

// Store is the blob store contract.
type Store interface {
	// List returns the objects directly under prefix and the sub-prefixes
	// one level down.
	List(ctx context.Context, prefix paths.Path) (Listing, error)

	// Get returns the content and attributes of the object at p, or a
	// vaulterr NotFound error.
	Get(ctx context.Context, p paths.Path) ([]byte, Object, error)

	// Stat returns the attributes of the object at p without its content,
	// or a vaulterr NotFound error.
	Stat(ctx context.Context, p paths.Path) (Object, error)

	// Put writes data at p, replacing any existing object. The creation
	// time of a replaced object is kept.
	Put(ctx context.Context, p paths.Path, data []byte) error

	// Delete removes the object at p. Deleting a missing object succeeds.
	Delete(ctx context.Context, p paths.Path) error

	Close() error
}

// ContentTypeByName guesses a content type from the file extension.
func ContentTypeByName(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// DetectContentType prefers the extension and falls back to sniffing data.
func DetectContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}
