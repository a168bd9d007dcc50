package filestorage

import "mime/multipart"

// ImageStorage defines the interface for uploaded image handling.
type ImageStorage interface {
	// SaveImage persists an accepted upload and returns the stored filename.
	// Uploads with a disallowed extension return ("", nil): the upload is
	// ignored, not treated as an error.
	SaveImage(fileHeader *multipart.FileHeader) (string, error)

	// DeleteImage removes a stored file by filename. Deleting a missing
	// file is not an error.
	DeleteImage(filename string) error
}
