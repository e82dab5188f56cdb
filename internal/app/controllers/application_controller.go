package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/deniz/stajlink/internal/app/auth"
	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/app/services"
	"github.com/deniz/stajlink/internal/middleware"
	"github.com/deniz/stajlink/internal/pkg/helpers"
)

// ApplicationController handles staj başvurusu endpoints
type ApplicationController struct {
	applicationService *services.ApplicationService
	logbookService     *services.LogbookService
	authService        *auth.AuthorizationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(
	applicationService *services.ApplicationService,
	logbookService *services.LogbookService,
	authService *auth.AuthorizationService,
	logger zerolog.Logger,
) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logbookService:     logbookService,
		authService:        authService,
		logger:             logger,
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fmt.Sprintf("invalid %s", name))
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

func requireUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return 0, false
	}
	return userID, true
}

// Create files a new application
// @Summary Create an internship application
// @Description Files a new application. The company is registered on first contact by its tax number.
// @Tags basvurular
// @Accept json
// @Produce json
// @Param request body dto.CreateApplicationRequest true "Application details"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or date range"
// @Failure 409 {object} dto.ErrorResponse "Overlapping application exists"
// @Router /basvurular [post]
// @Security BearerAuth
func (c *ApplicationController) Create(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.applicationService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Application created"))
}

// List returns applications. Students see their own; staff can filter freely.
// @Summary List applications
// @Tags basvurular
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param status query string false "Status filter" Enums(PENDING,APPROVED,REJECTED,CANCELLED)
// @Param studentId query int false "Student filter (staff only)"
// @Param companyId query int false "Company filter (staff only)"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse} "Applications"
// @Router /basvurular [get]
// @Security BearerAuth
func (c *ApplicationController) List(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	filter := dto.ApplicationFilter{
		Status:   ctx.Query("status"),
		Page:     page,
		PageSize: size,
	}

	if middleware.GetRoleType(ctx).IsStaff() {
		filter.StudentID, _ = strconv.ParseInt(ctx.Query("studentId"), 10, 64)
		filter.CompanyID, _ = strconv.ParseInt(ctx.Query("companyId"), 10, 64)
	} else {
		filter.StudentID = userID
	}

	resp, err := c.applicationService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(resp.Applications, resp.Pagination))
}

// Get returns one application
// @Summary Get an application
// @Tags basvurular
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /basvurular/{id} [get]
// @Security BearerAuth
func (c *ApplicationController) Get(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.authService.ValidateApplicationAccess(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.applicationService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// UpdateDates changes the internship period of a pending application
// @Summary Update application dates
// @Tags basvurular
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationDatesRequest true "New dates"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application updated"
// @Failure 409 {object} dto.ErrorResponse "Not pending or overlapping"
// @Router /basvurular/{id}/tarihler [put]
// @Security BearerAuth
func (c *ApplicationController) UpdateDates(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateApplicationDatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.applicationService.UpdateDates(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Application updated"))
}

// Cancel withdraws an application
// @Summary Cancel an application
// @Description Withdraws a pending application, or an approved one while its logbook is still waiting
// @Tags basvurular
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse "Application cancelled"
// @Failure 409 {object} dto.ErrorResponse "State does not allow cancelling"
// @Router /basvurular/{id} [delete]
// @Security BearerAuth
func (c *ApplicationController) Cancel(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.applicationService.Cancel(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Application cancelled"))
}

// UploadDocument stores a supporting document for the application
// @Summary Upload an application document
// @Description Uploads the transcript, insurance or service document as a PDF, replacing any previous one
// @Tags basvurular
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Application ID"
// @Param fileType path string true "Document type" Enums(transkript,sigorta,hizmet)
// @Param file formData file true "PDF file"
// @Success 201 {object} dto.APIResponse{data=dto.FileResponse} "Document stored"
// @Failure 400 {object} dto.ErrorResponse "Not a PDF or too large"
// @Router /basvurular/{id}/belgeler/{fileType} [post]
// @Security BearerAuth
func (c *ApplicationController) UploadDocument(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resourceType, ok := models.ParseResourceType(ctx.Param("fileType"))
	if !ok || resourceType == models.ResourceLogbookPDF {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "unknown document type")))
		return
	}

	// Ownership is settled before the upload body is read
	if err := c.authService.ValidateApplicationOwnership(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "file is required")))
		return
	}

	resp, err := c.logbookService.UploadDocument(ctx.Request.Context(), id, resourceType, userID, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Document stored"))
}

// DownloadDocument streams a supporting document
// @Summary Download an application document
// @Tags basvurular
// @Produce application/pdf
// @Param id path int true "Application ID"
// @Param fileType path string true "Document type" Enums(transkript,sigorta,hizmet)
// @Success 200 {file} binary "PDF content"
// @Failure 404 {object} dto.ErrorResponse "No such document"
// @Router /basvurular/{id}/belgeler/{fileType} [get]
// @Security BearerAuth
func (c *ApplicationController) DownloadDocument(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resourceType, ok := models.ParseResourceType(ctx.Param("fileType"))
	if !ok || resourceType == models.ResourceLogbookPDF {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "unknown document type")))
		return
	}

	if err := c.authService.ValidateApplicationAccess(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	rc, file, err := c.logbookService.OpenDocument(ctx.Request.Context(), id, resourceType)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	ctx.DataFromReader(http.StatusOK, file.FileSize, file.MimeType, rc, nil)
}
