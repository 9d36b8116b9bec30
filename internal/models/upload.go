package models

// UploadStatus enumerates the states an in-flight upload can be in.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadError     UploadStatus = "error"
)

// UploadState is the tracked upload progress for one record id.
// Progress is a fraction in [0,1].
type UploadState struct {
	Status       UploadStatus
	Progress     float64
	ErrorMessage string
}
