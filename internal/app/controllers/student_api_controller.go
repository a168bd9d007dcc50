package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/akhaled/studenthub/internal/app/models/dto"
	"github.com/akhaled/studenthub/internal/app/services"
	"github.com/akhaled/studenthub/internal/middleware"
)

// StudentAPIController handles the key-authenticated JSON API. Every
// response uses the {success, data|error} envelope.
type StudentAPIController struct {
	studentService services.StudentService
	baseURL        string
}

// NewStudentAPIController creates a new StudentAPIController
func NewStudentAPIController(studentService services.StudentService, baseURL string) *StudentAPIController {
	return &StudentAPIController{
		studentService: studentService,
		baseURL:        baseURL,
	}
}

// List returns all students.
// GET /api/students
func (c *StudentAPIController) List(ctx *gin.Context) {
	students, err := c.studentService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	data := dto.NewStudentListResponse(students, c.baseURL)
	ctx.JSON(http.StatusOK, dto.NewListResponse(data, len(data)))
}

// Get returns a single student by id.
// GET /api/students/:id
func (c *StudentAPIController) Get(ctx *gin.Context) {
	id, ok := apiPathID(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(dto.NewStudentResponse(student, c.baseURL)))
}

// Create creates a student from a JSON body. Name is required.
// POST /api/students
func (c *StudentAPIController) Create(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err, "Name is required")
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), req, nil)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(
		"Student created successfully",
		dto.NewStudentResponse(student, c.baseURL),
	))
}

// Update applies a partial update: fields omitted from the body keep
// their stored values.
// PUT /api/students/:id
func (c *StudentAPIController) Update(ctx *gin.Context) {
	id, ok := apiPathID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err, "No data provided")
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), id, req, nil)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(
		"Student updated successfully",
		dto.NewStudentResponse(student, c.baseURL),
	))
}

// Delete removes a student and its image file.
// DELETE /api/students/:id
func (c *StudentAPIController) Delete(ctx *gin.Context) {
	id, ok := apiPathID(ctx)
	if !ok {
		return
	}

	if err := c.studentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Student deleted successfully", nil))
}

// Stats returns aggregate statistics about the student table.
// GET /api/stats
func (c *StudentAPIController) Stats(ctx *gin.Context) {
	stats, err := c.studentService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(stats))
}

// respondBindError maps a body-binding failure to a response. A body
// truncated by the size cap answers 413; everything else answers 400.
func respondBindError(ctx *gin.Context, err error, fallback string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		ctx.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse("Request body too large"))
		return
	}
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(bindingErrorMessage(err, fallback)))
}

// bindingErrorMessage turns a binding failure into a field-level message,
// falling back to a generic one for malformed bodies.
func bindingErrorMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "gte", "lte":
			return fmt.Sprintf("%s must be between 0 and 150", fe.Field())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return fallback
}

func apiPathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Student ID must be a valid number"))
		return 0, false
	}
	return id, true
}
