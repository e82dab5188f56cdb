package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/deniz/stajlink/internal/app/auth"
	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/app/services"
	"github.com/deniz/stajlink/internal/middleware"
)

// CompanyController handles the company-facing endpoints: OTP login,
// application and logbook decisions, and document access
type CompanyController struct {
	companyService     *services.CompanyService
	applicationService *services.ApplicationService
	logbookService     *services.LogbookService
	authService        *auth.AuthorizationService
	logger             zerolog.Logger
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(
	companyService *services.CompanyService,
	applicationService *services.ApplicationService,
	logbookService *services.LogbookService,
	authService *auth.AuthorizationService,
	logger zerolog.Logger,
) *CompanyController {
	return &CompanyController{
		companyService:     companyService,
		applicationService: applicationService,
		logbookService:     logbookService,
		authService:        authService,
		logger:             logger,
	}
}

func requireCompanyID(ctx *gin.Context) (int64, bool) {
	companyID, ok := middleware.GetCompanyID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Company session required")))
		return 0, false
	}
	return companyID, true
}

// RequestOTP sends a one-time login code to the company's registered email
// @Summary Request a company login code
// @Description Sends a one-time code to the registered company email. The response does not reveal whether the tax number is known.
// @Tags sirket
// @Accept json
// @Produce json
// @Param request body dto.CompanyLoginRequest true "Company tax number"
// @Success 200 {object} dto.APIResponse "Code sent if the company is registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid tax number"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /sirket/giris [post]
func (c *CompanyController) RequestOTP(ctx *gin.Context) {
	var req dto.CompanyLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.companyService.RequestOTP(ctx.Request.Context(), req.TaxNo); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "If the company is registered, a code has been sent"))
}

// VerifyOTP exchanges a one-time code for a session token
// @Summary Verify a company login code
// @Description Redeems the one-time code for a short-lived company session token. Each code works once.
// @Tags sirket
// @Accept json
// @Produce json
// @Param request body dto.CompanyVerifyRequest true "Tax number and code"
// @Success 200 {object} dto.APIResponse{data=dto.CompanySessionResponse} "Session opened"
// @Failure 401 {object} dto.ErrorResponse "Wrong or expired code"
// @Failure 409 {object} dto.ErrorResponse "Code already used"
// @Router /sirket/dogrula [post]
func (c *CompanyController) VerifyOTP(ctx *gin.Context) {
	var req dto.CompanyVerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.companyService.VerifyOTP(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("taxNo", req.TaxNo).Msg("Company verification failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Session opened"))
}

// DecideApplication records an approve or reject decision on an application
// @Summary Decide on an application
// @Description Approves or rejects a pending application. Approval opens the logbook; rejection requires a reason.
// @Tags sirket
// @Accept json
// @Produce json
// @Param request body dto.ApplicationDecisionRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Decision recorded"
// @Failure 400 {object} dto.ErrorResponse "Rejection without a reason"
// @Failure 403 {object} dto.ErrorResponse "Application belongs to another company"
// @Failure 409 {object} dto.ErrorResponse "Decision already made"
// @Router /sirket/basvuru-karar [post]
// @Security BearerAuth
func (c *CompanyController) DecideApplication(ctx *gin.Context) {
	companyID, ok := requireCompanyID(ctx)
	if !ok {
		return
	}

	var req dto.ApplicationDecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.applicationService.Decide(ctx.Request.Context(), companyID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Decision recorded"))
}

// DecideLogbook records an approve or reject decision on an uploaded logbook
// @Summary Decide on a logbook
// @Description Approves an uploaded logbook or sends it back to WAITING for revision
// @Tags sirket
// @Accept json
// @Produce json
// @Param request body dto.LogbookDecisionRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.LogbookResponse} "Decision recorded"
// @Failure 403 {object} dto.ErrorResponse "Logbook belongs to another company"
// @Failure 409 {object} dto.ErrorResponse "Logbook is not uploaded"
// @Router /sirket/defter-karar [post]
// @Security BearerAuth
func (c *CompanyController) DecideLogbook(ctx *gin.Context) {
	companyID, ok := requireCompanyID(ctx)
	if !ok {
		return
	}

	var req dto.LogbookDecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.ValidateCompanyOwnsLogbook(ctx.Request.Context(), req.DefterID, companyID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.logbookService.Decide(ctx.Request.Context(), companyID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Decision recorded"))
}

// DownloadFile streams a document of one of the company's applications
// @Summary Download an applicant's document
// @Description Streams the logbook PDF or a supporting document of an application made to this company
// @Tags sirket
// @Produce application/pdf
// @Param basvuruId path int true "Application ID"
// @Param fileType path string true "Document type" Enums(defter,transkript,sigorta,hizmet)
// @Success 200 {file} binary "PDF content"
// @Failure 403 {object} dto.ErrorResponse "Application belongs to another company"
// @Failure 404 {object} dto.ErrorResponse "No such document"
// @Router /sirket/dosyalar/{basvuruId}/{fileType} [get]
// @Security BearerAuth
func (c *CompanyController) DownloadFile(ctx *gin.Context) {
	companyID, ok := requireCompanyID(ctx)
	if !ok {
		return
	}
	basvuruID, ok := parseIDParam(ctx, "basvuruId")
	if !ok {
		return
	}

	resourceType, ok := models.ParseResourceType(ctx.Param("fileType"))
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "unknown document type")))
		return
	}

	if err := c.authService.ValidateCompanyOwnsApplication(ctx.Request.Context(), basvuruID, companyID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var (
		rc   io.ReadSeekCloser
		file *models.File
		err  error
	)
	if resourceType == models.ResourceLogbookPDF {
		lb, lbErr := c.logbookService.GetByBasvuruID(ctx.Request.Context(), basvuruID)
		if lbErr != nil {
			middleware.HandleAPIError(ctx, lbErr)
			return
		}
		rc, file, err = c.logbookService.OpenPDF(ctx.Request.Context(), lb.ID)
	} else {
		rc, file, err = c.logbookService.OpenDocument(ctx.Request.Context(), basvuruID, resourceType)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	ctx.DataFromReader(http.StatusOK, file.FileSize, file.MimeType, rc, nil)
}
