package models

import (
	"slices"
	"time"
)

// Record is the metadata index entry describing one blob. Key is derived
// from Path and never chosen freely.
type Record struct {
	Key         string `gorm:"column:record_key;primaryKey;type:text" json:"key"`
	Path        string `gorm:"type:text;not null;index:idx_record_path" json:"path"`
	Name        string `gorm:"type:text;not null"                    json:"name"`
	Size        int64  `gorm:"not null;default:0"                    json:"size"`
	ContentType string `gorm:"type:text"                             json:"content_type"`

	// Blob timestamps, copied from the blob store rather than managed by gorm.
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`

	Keywords []string `gorm:"serializer:json;type:text" json:"keywords"`

	// Workflow flags
	UploadedBy  string `gorm:"type:text;index:idx_record_uploader" json:"uploaded_by"`
	Completed   bool   `gorm:"default:false"                       json:"completed"`
	CompletedBy string `gorm:"type:text"                           json:"completed_by"`
	Reviewed    bool   `gorm:"default:false"                       json:"reviewed"`
	ReviewedBy  string `gorm:"type:text"                           json:"reviewed_by"`
	Starred     bool   `gorm:"default:false"                       json:"starred"`
}

func (Record) TableName() string {
	return "records"
}

// Flags is the workflow state of a record, the part structural repair must
// never reset.
type Flags struct {
	UploadedBy  string
	Completed   bool
	CompletedBy string
	Reviewed    bool
	ReviewedBy  string
	Starred     bool
}

func (r *Record) Flags() Flags {
	return Flags{
		UploadedBy:  r.UploadedBy,
		Completed:   r.Completed,
		CompletedBy: r.CompletedBy,
		Reviewed:    r.Reviewed,
		ReviewedBy:  r.ReviewedBy,
		Starred:     r.Starred,
	}
}

func (r *Record) SetFlags(f Flags) {
	r.UploadedBy = f.UploadedBy
	r.Completed = f.Completed
	r.CompletedBy = f.CompletedBy
	r.Reviewed = f.Reviewed
	r.ReviewedBy = f.ReviewedBy
	r.Starred = f.Starred
}

// Merge combines a stored record with an incoming write. Structural fields
// (path, name, size, content type, timestamps, keywords) are taken from
// incoming. Workflow flags are merged: a flag set on either side stays set
// and recorded actors are kept. The result does not depend on how often the
// same incoming record is merged, which makes repeated repairs idempotent.
func Merge(stored, incoming Record) Record {
	out := incoming
	if len(out.Keywords) == 0 {
		out.Keywords = slices.Clone(stored.Keywords)
	}
	if out.ContentType == "" {
		out.ContentType = stored.ContentType
	}

	out.UploadedBy = firstNonEmpty(stored.UploadedBy, incoming.UploadedBy)
	out.Completed = stored.Completed || incoming.Completed
	out.CompletedBy = firstNonEmpty(stored.CompletedBy, incoming.CompletedBy)
	out.Reviewed = stored.Reviewed || incoming.Reviewed
	out.ReviewedBy = firstNonEmpty(stored.ReviewedBy, incoming.ReviewedBy)
	out.Starred = stored.Starred || incoming.Starred
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Keywords = slices.Clone(r.Keywords)
	return r
}
