package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akhaled/studenthub/internal/app/models/dto"
	"github.com/akhaled/studenthub/internal/app/services"
	"github.com/akhaled/studenthub/internal/pkg/apperrors"
	"github.com/akhaled/studenthub/internal/pkg/flash"
	"github.com/akhaled/studenthub/internal/pkg/logger"
)

// StudentPageController handles the form-based UI for student records.
// Every POST performs one service operation, sets a flash message, and
// redirects to the canonical follow-up view.
type StudentPageController struct {
	studentService services.StudentService
}

// NewStudentPageController creates a new StudentPageController
func NewStudentPageController(studentService services.StudentService) *StudentPageController {
	return &StudentPageController{
		studentService: studentService,
	}
}

// Index renders the student list.
func (c *StudentPageController) Index(ctx *gin.Context) {
	students, err := c.studentService.List(ctx.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list students")
		renderPage(ctx, "index.html", gin.H{"Error": "Could not load students."})
		return
	}
	renderPage(ctx, "index.html", gin.H{"Students": students})
}

// ShowAdd renders the add-student form.
func (c *StudentPageController) ShowAdd(ctx *gin.Context) {
	renderPage(ctx, "add.html", gin.H{})
}

// Add handles the add-student form submission.
func (c *StudentPageController) Add(ctx *gin.Context) {
	req := dto.CreateStudentRequest{
		Name: ctx.PostForm("name"),
		Age:  formAge(ctx),
		City: formOptional(ctx, "city"),
	}

	if _, err := c.studentService.Create(ctx.Request.Context(), req, formImage(ctx)); err != nil {
		if errors.Is(err, apperrors.ErrValidationFailed) {
			flash.Set(ctx, "danger", err.Error())
			ctx.Redirect(http.StatusFound, "/add")
			return
		}
		logger.Error().Err(err).Msg("Failed to create student")
		flash.Set(ctx, "danger", "An error occurred while adding the student.")
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	flash.Set(ctx, "success", "Student added successfully!")
	ctx.Redirect(http.StatusFound, "/")
}

// ShowEdit renders the edit form for one student.
func (c *StudentPageController) ShowEdit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			flash.Set(ctx, "danger", "Student not found.")
		} else {
			logger.Error().Err(err).Int64("studentID", id).Msg("Failed to load student")
			flash.Set(ctx, "danger", "An error occurred while loading the student.")
		}
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	renderPage(ctx, "edit.html", gin.H{"Student": student})
}

// Edit handles the edit form submission. The form resubmits all fields;
// blank optional fields are treated as omitted and keep stored values.
func (c *StudentPageController) Edit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	req := dto.UpdateStudentRequest{
		Name: formOptional(ctx, "name"),
		Age:  formAge(ctx),
		City: formOptional(ctx, "city"),
	}

	if _, err := c.studentService.Update(ctx.Request.Context(), id, req, formImage(ctx)); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrStudentNotFound):
			flash.Set(ctx, "danger", "Student not found.")
		case errors.Is(err, apperrors.ErrValidationFailed):
			flash.Set(ctx, "danger", err.Error())
		default:
			logger.Error().Err(err).Int64("studentID", id).Msg("Failed to update student")
			flash.Set(ctx, "danger", "An error occurred while updating the student.")
		}
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	flash.Set(ctx, "success", "Student updated successfully!")
	ctx.Redirect(http.StatusFound, "/")
}

// Delete handles the delete action.
func (c *StudentPageController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.studentService.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			flash.Set(ctx, "danger", "Student not found.")
		} else {
			logger.Error().Err(err).Int64("studentID", id).Msg("Failed to delete student")
			flash.Set(ctx, "danger", "An error occurred while deleting the student.")
		}
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	flash.Set(ctx, "success", "Student deleted successfully!")
	ctx.Redirect(http.StatusFound, "/")
}

// pathID parses the :id path parameter, redirecting home on garbage.
func pathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		flash.Set(ctx, "danger", "Invalid student ID.")
		ctx.Redirect(http.StatusFound, "/")
		return 0, false
	}
	return id, true
}

// formOptional returns a posted field as a pointer, nil when blank.
func formOptional(ctx *gin.Context, field string) *string {
	value := ctx.PostForm(field)
	if value == "" {
		return nil
	}
	return &value
}

// formAge parses the optional age field, nil when blank or unparseable.
func formAge(ctx *gin.Context) *int {
	value := ctx.PostForm("age")
	if value == "" {
		return nil
	}
	age, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &age
}

// formImage returns the uploaded image, nil when the field is absent.
func formImage(ctx *gin.Context) *multipart.FileHeader {
	file, err := ctx.FormFile("image")
	if err != nil {
		return nil
	}
	return file
}
