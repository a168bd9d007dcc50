package dto

import (
	"strings"
	"time"

	"github.com/akhaled/studenthub/internal/app/models"
)

// CreateStudentRequest is the payload for creating a student. Name is the
// only required field.
type CreateStudentRequest struct {
	Name string  `json:"name" binding:"required"`
	Age  *int    `json:"age" binding:"omitempty,gte=0,lte=150"`
	City *string `json:"city"`
}

// UpdateStudentRequest is the payload for a partial update: nil fields
// keep their stored values.
type UpdateStudentRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1"`
	Age  *int    `json:"age" binding:"omitempty,gte=0,lte=150"`
	City *string `json:"city"`
}

// StudentResponse is the JSON shape of a student record. Optional fields
// serialize as null; ImageURL is an absolute URL into the upload path.
type StudentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Age       *int      `json:"age"`
	City      *string   `json:"city"`
	Image     *string   `json:"image"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStudentResponse builds a StudentResponse from a record, resolving the
// stored filename to an absolute URL under baseURL.
func NewStudentResponse(s *models.Student, baseURL string) StudentResponse {
	resp := StudentResponse{
		ID:        s.ID,
		Name:      s.Name,
		Age:       s.Age,
		City:      s.City,
		Image:     s.Image,
		CreatedAt: s.CreatedAt,
	}
	if s.Image != nil && *s.Image != "" {
		url := strings.TrimRight(baseURL, "/") + "/uploads/" + *s.Image
		resp.ImageURL = &url
	}
	return resp
}

// NewStudentListResponse maps a slice of records.
func NewStudentListResponse(students []*models.Student, baseURL string) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, NewStudentResponse(s, baseURL))
	}
	return out
}

// CityCount is one row of the per-city aggregate, ordered by count descending.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// StatsResponse is the aggregate payload of the stats endpoint.
type StatsResponse struct {
	TotalStudents  int         `json:"total_students"`
	AverageAge     float64     `json:"average_age"`
	StudentsByCity []CityCount `json:"students_by_city"`
}
