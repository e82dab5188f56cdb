package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/app/services"
	"github.com/deniz/stajlink/internal/middleware"
	"github.com/deniz/stajlink/internal/pkg/helpers"
)

// AdminController handles user administration, bulk imports,
// logbook overrides and statistics
type AdminController struct {
	adminService       *services.AdminService
	importService      *services.ImportService
	logbookService     *services.LogbookService
	applicationService *services.ApplicationService
	logger             zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(
	adminService *services.AdminService,
	importService *services.ImportService,
	logbookService *services.LogbookService,
	applicationService *services.ApplicationService,
	logger zerolog.Logger,
) *AdminController {
	return &AdminController{
		adminService:       adminService,
		importService:      importService,
		logbookService:     logbookService,
		applicationService: applicationService,
		logger:             logger,
	}
}

// CreateUser creates a new user account
// @Summary Create a user
// @Description Creates a user with the given role. Students require a valid student number.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User details"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "User created"
// @Failure 400 {object} dto.ErrorResponse "Invalid role or student number"
// @Failure 409 {object} dto.ErrorResponse "Email or student number already in use"
// @Router /admin/kullanicilar [post]
// @Security BearerAuth
func (c *AdminController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.adminService.CreateUser(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "User created"))
}

// ListUsers lists user accounts
// @Summary List users
// @Tags admin
// @Produce json
// @Param role query string false "Filter by role"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse} "Users"
// @Router /admin/kullanicilar [get]
// @Security BearerAuth
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.adminService.ListUsers(ctx.Request.Context(), ctx.Query("role"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(resp.Users, resp.Pagination))
}

// GetUser returns a single user account
// @Summary Get a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/kullanicilar/{id} [get]
// @Security BearerAuth
func (c *AdminController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.adminService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "User retrieved"))
}

// UpdateUser updates a user account
// @Summary Update a user
// @Description Updates name or active flag. Deactivation revokes the user's refresh tokens.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User updated"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/kullanicilar/{id} [put]
// @Security BearerAuth
func (c *AdminController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.adminService.UpdateUser(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "User updated"))
}

// DeleteUser removes a user account
// @Summary Delete a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse "User deleted"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/kullanicilar/{id} [delete]
// @Security BearerAuth
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteUser(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "User deleted"))
}

// DeleteApplication removes an application entirely
// @Summary Delete an application
// @Description Removes an application with its logbook, audit history and uploaded documents
// @Tags admin
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse "Application deleted"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/basvurular/{id} [delete]
// @Security BearerAuth
func (c *AdminController) DeleteApplication(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.applicationService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Application deleted"))
}

// ForceLogbookStatus overrides a logbook's status
// @Summary Override a logbook status
// @Description Moves a logbook to any status. Moving to APPROVED requires an uploaded PDF. Every override is written to the audit log.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Logbook ID"
// @Param request body dto.UpdateLogbookStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.LogbookResponse} "Status updated"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 409 {object} dto.ErrorResponse "APPROVED without a PDF"
// @Router /admin/defterler/{id}/durum [put]
// @Security BearerAuth
func (c *AdminController) ForceLogbookStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	adminID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateLogbookStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.logbookService.ForceStatus(ctx.Request.Context(), id, adminID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Logbook status updated"))
}

// LogbookAudit returns the override history of a logbook
// @Summary List logbook status overrides
// @Tags admin
// @Produce json
// @Param id path int true "Logbook ID"
// @Success 200 {object} dto.APIResponse{data=[]models.LogbookAuditEntry} "Audit entries"
// @Failure 404 {object} dto.ErrorResponse "Logbook not found"
// @Router /admin/defterler/{id}/gecmis [get]
// @Security BearerAuth
func (c *AdminController) LogbookAudit(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	entries, err := c.logbookService.ListAudit(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entries, "Audit entries retrieved"))
}

// Statistics returns aggregate counts for dashboards
// @Summary Get platform statistics
// @Tags admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StatisticsResponse} "Statistics"
// @Router /admin/istatistikler [get]
// @Security BearerAuth
func (c *AdminController) Statistics(ctx *gin.Context) {
	resp, err := c.adminService.Statistics(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Statistics retrieved"))
}

// StartImport starts a bulk user import from a spreadsheet
// @Summary Start a bulk import
// @Description Parses the uploaded spreadsheet and creates user accounts in the background
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param jobType formData string true "Import type" Enums(ADVISOR,STUDENT,DUAL_MAJOR_STUDENT)
// @Param file formData file true "Spreadsheet (.xlsx)"
// @Success 202 {object} dto.APIResponse{data=dto.ImportJobResponse} "Import started"
// @Failure 400 {object} dto.ErrorResponse "Unknown job type or unreadable spreadsheet"
// @Router /admin/ice-aktar [post]
// @Security BearerAuth
func (c *AdminController) StartImport(ctx *gin.Context) {
	adminID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "spreadsheet file is required")))
		return
	}

	jobType := models.ImportJobType(ctx.PostForm("jobType"))
	resp, err := c.importService.StartImport(ctx.Request.Context(), jobType, fileHeader, adminID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.NewSuccessResponse(resp, "Import started"))
}

// ListImports lists bulk import jobs
// @Summary List import jobs
// @Tags admin
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]dto.ImportJobResponse} "Import jobs"
// @Router /admin/ice-aktar [get]
// @Security BearerAuth
func (c *AdminController) ListImports(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	jobs, pagination, err := c.importService.ListJobs(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(jobs, pagination))
}

// GetImport returns an import job with its per-row results
// @Summary Get an import job
// @Tags admin
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=dto.ImportJobDetailResponse} "Import job"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /admin/ice-aktar/{id} [get]
// @Security BearerAuth
func (c *AdminController) GetImport(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.importService.GetJobDetail(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Import job retrieved"))
}

// CancelImport cancels a running import job
// @Summary Cancel an import job
// @Description Stops processing further rows. Rows already imported keep their accounts.
// @Tags admin
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse "Import cancelled"
// @Failure 409 {object} dto.ErrorResponse "Job is not running"
// @Router /admin/ice-aktar/{id} [delete]
// @Security BearerAuth
func (c *AdminController) CancelImport(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.importService.CancelJob(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Import cancelled"))
}
