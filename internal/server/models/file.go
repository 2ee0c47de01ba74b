package models

import "time"

// File is the metadata of an uploaded blob. Filename is the storage key.
type File struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	UploadedBy   string    `json:"uploaded_by"`
	FilePath     string    `json:"file_path"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func (f *File) SetID(id int64) { f.ID = id }

func (f *File) Stamp(now time.Time) {
	if f.UploadedAt.IsZero() {
		f.UploadedAt = now
	}
}
