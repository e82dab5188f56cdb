package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/deniz/stajlink/internal/app/auth"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/app/services"
	"github.com/deniz/stajlink/internal/middleware"
)

// LogbookController handles staj defteri endpoints
type LogbookController struct {
	logbookService *services.LogbookService
	authService    *auth.AuthorizationService
	logger         zerolog.Logger
}

// NewLogbookController creates a new LogbookController
func NewLogbookController(logbookService *services.LogbookService, authService *auth.AuthorizationService, logger zerolog.Logger) *LogbookController {
	return &LogbookController{
		logbookService: logbookService,
		authService:    authService,
		logger:         logger,
	}
}

// Get returns one logbook
// @Summary Get a logbook
// @Tags defterler
// @Produce json
// @Param id path int true "Logbook ID"
// @Success 200 {object} dto.APIResponse{data=dto.LogbookResponse} "Logbook"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /defterler/{id} [get]
// @Security BearerAuth
func (c *LogbookController) Get(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if !middleware.GetRoleType(ctx).IsStaff() {
		if err := c.authService.ValidateLogbookOwnership(ctx.Request.Context(), id, userID); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}

	resp, err := c.logbookService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetByApplication returns the logbook belonging to an application
// @Summary Get the logbook of an application
// @Tags defterler
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.LogbookResponse} "Logbook"
// @Failure 404 {object} dto.ErrorResponse "No logbook for this application"
// @Router /basvurular/{id}/defter [get]
// @Security BearerAuth
func (c *LogbookController) GetByApplication(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	basvuruID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.authService.ValidateApplicationAccess(ctx.Request.Context(), basvuruID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.logbookService.GetByBasvuruID(ctx.Request.Context(), basvuruID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Upload stores the logbook PDF
// @Summary Upload the logbook PDF
// @Description Stores a new logbook PDF, replacing any previous upload. Refused once the logbook is approved.
// @Tags defterler
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Logbook ID"
// @Param file formData file true "PDF file"
// @Success 200 {object} dto.APIResponse{data=dto.LogbookResponse} "PDF stored"
// @Failure 400 {object} dto.ErrorResponse "Not a PDF or too large"
// @Failure 409 {object} dto.ErrorResponse "Logbook already approved"
// @Router /defterler/{id}/pdf [post]
// @Security BearerAuth
func (c *LogbookController) Upload(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "file is required")))
		return
	}

	resp, err := c.logbookService.UploadPDF(ctx.Request.Context(), id, userID, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "PDF stored"))
}

// Download streams the logbook PDF
// @Summary Download the logbook PDF
// @Tags defterler
// @Produce application/pdf
// @Param id path int true "Logbook ID"
// @Success 200 {file} binary "PDF content"
// @Failure 404 {object} dto.ErrorResponse "No PDF uploaded"
// @Router /defterler/{id}/pdf [get]
// @Security BearerAuth
func (c *LogbookController) Download(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if !middleware.GetRoleType(ctx).IsStaff() {
		if err := c.authService.ValidateLogbookOwnership(ctx.Request.Context(), id, userID); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}

	rc, file, err := c.logbookService.OpenPDF(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	ctx.DataFromReader(http.StatusOK, file.FileSize, file.MimeType, rc, nil)
}

// Delete removes the uploaded PDF
// @Summary Delete the logbook PDF
// @Description Removes the uploaded PDF and reverts the logbook to WAITING. Refused once approved.
// @Tags defterler
// @Produce json
// @Param id path int true "Logbook ID"
// @Success 200 {object} dto.APIResponse "PDF deleted"
// @Failure 404 {object} dto.ErrorResponse "No PDF uploaded"
// @Failure 409 {object} dto.ErrorResponse "Logbook already approved"
// @Router /defterler/{id}/pdf [delete]
// @Security BearerAuth
func (c *LogbookController) Delete(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.logbookService.DeletePDF(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "PDF deleted"))
}
