package models

import "time"

// Student is a student record. Age, city and image are optional; Image,
// when set, names a file under the upload directory. A row referencing a
// missing file is read as having no image.
type Student struct {
	ID        int64
	Name      string
	Age       *int
	City      *string
	Image     *string
	CreatedAt time.Time
}
