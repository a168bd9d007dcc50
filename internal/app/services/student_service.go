package services

import (
	"context"
	"fmt"
	"math"
	"mime/multipart"
	"strings"

	"github.com/akhaled/studenthub/internal/app/models"
	"github.com/akhaled/studenthub/internal/app/models/dto"
	"github.com/akhaled/studenthub/internal/app/repositories"
	"github.com/akhaled/studenthub/internal/pkg/apperrors"
	"github.com/akhaled/studenthub/internal/pkg/filestorage"
	"github.com/akhaled/studenthub/internal/pkg/logger"
)

// StudentService defines the interface for student record operations.
// Image files live on disk and rows in the store; the two are kept
// consistent here, not transactionally. A failure between the file step
// and the row step can orphan a file, which is logged and tolerated.
type StudentService interface {
	List(ctx context.Context) ([]*models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, req dto.CreateStudentRequest, image *multipart.FileHeader) (*models.Student, error)
	Update(ctx context.Context, id int64, req dto.UpdateStudentRequest, image *multipart.FileHeader) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	studentRepo *repositories.StudentRepository
	images      filestorage.ImageStorage
}

// NewStudentService creates a new student service instance
func NewStudentService(studentRepo *repositories.StudentRepository, images filestorage.ImageStorage) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		images:      images,
	}
}

// List returns all student records in insertion order.
func (s *studentServiceImpl) List(ctx context.Context) ([]*models.Student, error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}

// Get returns a single student record.
func (s *studentServiceImpl) Get(ctx context.Context, id int64) (*models.Student, error) {
	if id <= 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return s.studentRepo.GetByID(ctx, id)
}

// Create validates the request, stores an accepted image first, then
// inserts the row. An insert failure after a saved image leaves the file
// orphaned; that is logged rather than rolled back.
func (s *studentServiceImpl) Create(ctx context.Context, req dto.CreateStudentRequest, image *multipart.FileHeader) (*models.Student, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	student := &models.Student{
		Name: name,
		Age:  req.Age,
		City: req.City,
	}

	if image != nil {
		filename, err := s.images.SaveImage(image)
		if err != nil {
			// Image persistence failure is non-fatal: the record is
			// still created, just without the image.
			logger.Error().Err(err).Str("filename", image.Filename).Msg("Failed to save uploaded image")
		} else if filename != "" {
			student.Image = &filename
		}
	}

	id, err := s.studentRepo.Create(ctx, student)
	if err != nil {
		if student.Image != nil {
			logger.Warn().Str("image", *student.Image).Msg("Insert failed after image save; file left orphaned")
		}
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	student.ID = id
	return s.studentRepo.GetByID(ctx, id)
}

// Update applies a partial update: nil request fields keep the stored
// values. A newly accepted image replaces the previous file on disk.
func (s *studentServiceImpl) Update(ctx context.Context, id int64, req dto.UpdateStudentRequest, image *multipart.FileHeader) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty")
		}
		student.Name = name
	}
	if req.Age != nil {
		student.Age = req.Age
	}
	if req.City != nil {
		student.City = req.City
	}

	if image != nil {
		filename, err := s.images.SaveImage(image)
		if err != nil {
			logger.Error().Err(err).Str("filename", image.Filename).Msg("Failed to save replacement image")
		} else if filename != "" {
			if student.Image != nil {
				// Old file already gone is fine; DeleteImage is idempotent.
				if err := s.images.DeleteImage(*student.Image); err != nil {
					logger.Warn().Err(err).Str("image", *student.Image).Msg("Failed to delete replaced image")
				}
			}
			student.Image = &filename
		}
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}

	return s.studentRepo.GetByID(ctx, id)
}

// Delete removes the row, then best-effort removes the referenced image
// file. File-deletion failure does not undo the row deletion.
func (s *studentServiceImpl) Delete(ctx context.Context, id int64) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if student.Image != nil {
		if err := s.images.DeleteImage(*student.Image); err != nil {
			logger.Warn().Err(err).Str("image", *student.Image).Msg("Failed to delete image for removed student")
		}
	}

	return nil
}

// Stats returns the aggregate view: total count, average age rounded to
// two decimals (0 when no row has an age), and per-city counts sorted by
// count descending.
func (s *studentServiceImpl) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	agg, err := s.studentRepo.Aggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("error computing stats: %w", err)
	}

	stats := &dto.StatsResponse{
		TotalStudents:  agg.Total,
		StudentsByCity: agg.ByCity,
	}
	if agg.AverageAge.Valid {
		stats.AverageAge = math.Round(agg.AverageAge.Float64*100) / 100
	}

	return stats, nil
}
