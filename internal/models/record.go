// Package models defines the artifact record types shared by the storage,
// reconciliation and upload layers.
package models

import (
	"time"
)

// Kind classifies an artifact.
type Kind string

const (
	KindAudio     Kind = "audio"
	KindVideo     Kind = "video"
	KindThumbnail Kind = "thumbnail"
	KindDocument  Kind = "document"
)

// Location describes where a record's payload lives. Exactly one of the two
// concrete types applies to a record, chosen once at creation time.
type Location interface {
	isLocation()
}

// Inline carries the payload itself, encoded as a self-describing,
// text-safe data URI (content type + base64 bytes).
type Inline struct {
	Data string
}

// BlobRef points at a payload kept in the blob tier store under Key.
type BlobRef struct {
	Key string
}

func (Inline) isLocation()  {}
func (BlobRef) isLocation() {}

// ArtifactRecord is the durable description of one recorded artifact.
//
// Handle is transient process state: it is minted on create/restore, never
// persisted, and must be released when the record is discarded.
type ArtifactRecord struct {
	Id              string
	Name            string
	Kind            Kind
	ContentType     string
	SizeBytes       int64
	DurationSeconds float64
	CreatedAt       time.Time
	Uploaded        bool
	UploadPercent   int
	Location        Location
	Handle          *Handle
}

// EnhancedRecord is an ArtifactRecord annotated with provenance after
// reconciliation. Remote-origin records are never directly mutable.
type EnhancedRecord struct {
	ArtifactRecord
	IsLocal bool
}
