package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/akhaled/studenthub/internal/app/models"
	"github.com/akhaled/studenthub/internal/app/models/dto"
	"github.com/akhaled/studenthub/internal/db"
	"github.com/akhaled/studenthub/internal/pkg/apperrors"
	"github.com/akhaled/studenthub/internal/pkg/helpers"
	"github.com/akhaled/studenthub/internal/pkg/logger"
)

// StudentAggregates carries the raw aggregate values for the stats
// endpoint; rounding is left to the service.
type StudentAggregates struct {
	Total      int
	AverageAge sql.NullFloat64
	ByCity     []dto.CityCount
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *db.Database
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.Database) *StudentRepository {
	return &StudentRepository{
		db: database,
		sb: database.Builder(),
	}
}

// Create inserts a student and returns its id.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	query, args, err := r.sb.Insert("students").
		Columns("name", "age", "city", "image").
		Values(
			student.Name,
			helpers.NullInt64FromPtr(student.Age),
			helpers.NullStringFromPtr(student.City),
			helpers.NullStringFromPtr(student.Image),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create student query: %w", err)
	}

	var id int64
	if err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create student query")
		return 0, fmt.Errorf("error creating student: %w", err)
	}

	return id, nil
}

// GetByID retrieves a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query, args, err := r.sb.Select("id", "name", "age", "city", "image", "created_at").
		From("students").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := r.scanStudent(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student by id: %w", err)
	}

	return student, nil
}

// List retrieves all students in insertion order.
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	query, args, err := r.sb.Select("id", "name", "age", "city", "image", "created_at").
		From("students").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student, err := r.scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// Update writes all mutable columns of a student. The caller merges
// partial updates before calling.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"name":  student.Name,
			"age":   helpers.NullInt64FromPtr(student.Age),
			"city":  helpers.NullStringFromPtr(student.City),
			"image": helpers.NullStringFromPtr(student.Image),
		}).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	result, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student row.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	result, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// Aggregates computes the stats in one pass over three aggregate queries.
func (r *StudentRepository) Aggregates(ctx context.Context) (*StudentAggregates, error) {
	agg := &StudentAggregates{ByCity: []dto.CityCount{}}

	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From("students").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	if err := r.db.SQL.QueryRowContext(ctx, countQuery, countArgs...).Scan(&agg.Total); err != nil {
		return nil, fmt.Errorf("error counting students: %w", err)
	}

	avgQuery, avgArgs, err := r.sb.Select("AVG(age)").From("students").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build average age query: %w", err)
	}
	if err := r.db.SQL.QueryRowContext(ctx, avgQuery, avgArgs...).Scan(&agg.AverageAge); err != nil {
		return nil, fmt.Errorf("error averaging ages: %w", err)
	}

	cityQuery, cityArgs, err := r.sb.Select("city", "COUNT(*) AS count").
		From("students").
		Where("city IS NOT NULL").
		GroupBy("city").
		OrderBy("count DESC", "city ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build city aggregate query: %w", err)
	}

	rows, err := r.db.SQL.QueryContext(ctx, cityQuery, cityArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing city aggregate query")
		return nil, fmt.Errorf("error querying city aggregates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc dto.CityCount
		if err := rows.Scan(&cc.City, &cc.Count); err != nil {
			return nil, fmt.Errorf("error scanning city aggregate row: %w", err)
		}
		agg.ByCity = append(agg.ByCity, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating city aggregate rows: %w", err)
	}

	return agg, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *StudentRepository) scanStudent(row scanner) (*models.Student, error) {
	var (
		student models.Student
		age     sql.NullInt64
		city    sql.NullString
		image   sql.NullString
	)
	if err := row.Scan(&student.ID, &student.Name, &age, &city, &image, &student.CreatedAt); err != nil {
		return nil, err
	}
	student.Age = helpers.PtrFromNullInt64(age)
	student.City = helpers.PtrFromNullString(city)
	student.Image = helpers.PtrFromNullString(image)
	return &student, nil
}
