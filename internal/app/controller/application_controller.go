package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/service"
	apperrors "github.com/odvhub/odvhub-backend/internal/errors"
	"github.com/odvhub/odvhub-backend/internal/middleware"
)

type ApplicationController struct {
	applicationService service.ApplicationService
	memberService      service.MemberService
	artifactService    service.ArtifactService
}

func NewApplicationController(
	applicationService service.ApplicationService,
	memberService service.MemberService,
	artifactService service.ArtifactService,
) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		memberService:      memberService,
		artifactService:    artifactService,
	}
}

type SubmitApplicationRequest struct {
	Type         model.ApplicationType    `json:"type" binding:"required"`
	Payload      model.ApplicationPayload `json:"payload" binding:"required"`
	CaptchaToken string                   `json:"captcha_token"`
}

type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

// Submit accepts a public membership application
// POST /api/v1/applications
func (ctrl *ApplicationController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid submission request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	app, reasons, err := ctrl.applicationService.Submit(c.Request.Context(), service.SubmitInput{
		Type:         req.Type,
		Payload:      req.Payload,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrCaptchaFailed) {
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.SecurityCaptchaFailed, "Captcha verification failed")
			return
		}
		log.Error("Failed to submit application", err, nil)
		info := apperrors.ParseError(err, "submit application")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}
	if len(reasons) > 0 {
		apperrors.RespondWithSubmissionErrors(c, reasons)
		return
	}

	log.Info("Application submitted", map[string]interface{}{
		"application_id": app.ID,
		"code":           app.Code,
	})

	c.JSON(http.StatusCreated, gin.H{
		"code":         app.Code,
		"status":       app.Status,
		"submitted_at": app.SubmittedAt,
	})
}

// GetStatusByCode lets an applicant check the outcome with the code they
// received at submission. No personal data is returned.
// GET /api/v1/applications/:code/status
func (ctrl *ApplicationController) GetStatusByCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	code := c.Param("code")
	app, err := ctrl.applicationService.GetByCode(code)
	if err != nil {
		if errors.Is(err, service.ErrApplicationNotFound) {
			apperrors.NotFound(c, apperrors.ApplicationNotFound, "Application not found")
			return
		}
		log.Error("Failed to fetch application by code", err, map[string]interface{}{
			"code": code,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":   app.Code,
		"status": app.Status,
	})
}

// List returns applications for the back office, optionally filtered
// GET /api/v1/admin/applications?status=pending&type=junior
func (ctrl *ApplicationController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := model.ApplicationStatus(c.Query("status"))
	appType := model.ApplicationType(c.Query("type"))

	apps, err := ctrl.applicationService.List(status, appType)
	if err != nil {
		log.Error("Failed to list applications", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"count":        len(apps),
	})
}

// GetByID returns one application with its decoded payload
// GET /api/v1/admin/applications/:id
func (ctrl *ApplicationController) GetByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.applicationID(c)
	if !ok {
		return
	}

	app, err := ctrl.applicationService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrApplicationNotFound) {
			apperrors.NotFound(c, apperrors.ApplicationNotFound, "Application not found")
			return
		}
		log.Error("Failed to fetch application", err, map[string]interface{}{
			"application_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	payload, err := app.DecodePayload()
	if err != nil {
		log.Error("Failed to decode application payload", err, map[string]interface{}{
			"application_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application": app,
		"payload":     payload,
	})
}

// Approve transitions a pending application to approved and provisions the
// member record
// POST /api/v1/admin/applications/:id/approve
func (ctrl *ApplicationController) Approve(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.applicationID(c)
	if !ok {
		return
	}
	reviewerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	app, member, err := ctrl.applicationService.Approve(c.Request.Context(), id, reviewerID)
	if err != nil {
		ctrl.respondReviewError(c, err, id, "approve")
		return
	}

	log.Info("Application approved", map[string]interface{}{
		"application_id":      id,
		"member_id":           member.ID,
		"registration_number": member.RegistrationNumber,
		"reviewer_id":         reviewerID,
	})

	c.JSON(http.StatusOK, gin.H{
		"application": app,
		"member":      member,
	})
}

// Reject transitions a pending application to rejected
// POST /api/v1/admin/applications/:id/reject
func (ctrl *ApplicationController) Reject(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.applicationID(c)
	if !ok {
		return
	}
	reviewerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	app, err := ctrl.applicationService.Reject(c.Request.Context(), id, reviewerID, req.Reason)
	if err != nil {
		ctrl.respondReviewError(c, err, id, "reject")
		return
	}

	log.Info("Application rejected", map[string]interface{}{
		"application_id": id,
		"reviewer_id":    reviewerID,
	})

	c.JSON(http.StatusOK, gin.H{
		"application": app,
	})
}

// Delete removes a non-approved application and its stored document
// DELETE /api/v1/admin/applications/:id
func (ctrl *ApplicationController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.applicationID(c)
	if !ok {
		return
	}

	if err := ctrl.applicationService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrApplicationNotFound) {
			apperrors.NotFound(c, apperrors.ApplicationNotFound, "Application not found")
			return
		}
		if errors.Is(err, service.ErrCannotDeleteApproved) {
			apperrors.Conflict(c, apperrors.ApplicationDeleteApproved, "An approved application cannot be deleted")
			return
		}
		log.Error("Failed to delete application", err, map[string]interface{}{
			"application_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Application deleted",
	})
}

// RegeneratePDF re-renders and replaces the stored summary document
// POST /api/v1/admin/applications/:id/regenerate-pdf
func (ctrl *ApplicationController) RegeneratePDF(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.applicationID(c)
	if !ok {
		return
	}

	app, err := ctrl.applicationService.RegeneratePDF(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrApplicationNotFound) {
			apperrors.NotFound(c, apperrors.ApplicationNotFound, "Application not found")
			return
		}
		log.Error("Failed to regenerate application document", err, map[string]interface{}{
			"application_id": id,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ArtifactGenerationFailed, "Document generation failed. Please try again later")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application": app,
		"pdf_file":    app.PDFFile,
	})
}

// DownloadPDF streams the stored summary document
// GET /api/v1/admin/applications/:id/pdf
func (ctrl *ApplicationController) DownloadPDF(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.applicationID(c)
	if !ok {
		return
	}

	app, err := ctrl.applicationService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrApplicationNotFound) {
			apperrors.NotFound(c, apperrors.ApplicationNotFound, "Application not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	reader, err := ctrl.artifactService.Open(c.Request.Context(), app)
	if err != nil {
		if errors.Is(err, service.ErrNoArtifact) {
			apperrors.NotFound(c, apperrors.ApplicationNoArtifact, "No document has been generated for this application")
			return
		}
		log.Error("Failed to open application document", err, map[string]interface{}{
			"application_id": id,
			"key":            app.PDFFile,
		})
		apperrors.InternalError(c, "")
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, map[string]string{
		"Content-Disposition": `attachment; filename="application-` + app.Code + `.pdf"`,
	})
}

func (ctrl *ApplicationController) applicationID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid application ID")
		return 0, false
	}
	return uint(id), true
}

func (ctrl *ApplicationController) respondReviewError(c *gin.Context, err error, id uint, op string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		apperrors.NotFound(c, apperrors.ApplicationNotFound, "Application not found")
	case errors.Is(err, service.ErrAlreadyProcessed):
		apperrors.Conflict(c, apperrors.ApplicationAlreadyProcessed, "This application has already been processed")
	case errors.Is(err, service.ErrPayloadIncomplete):
		apperrors.RespondWithError(c, http.StatusUnprocessableEntity, apperrors.ValidationFailed, "The application payload is missing required fields")
	default:
		log.Error("Failed to review application", err, map[string]interface{}{
			"application_id": id,
			"operation":      op,
		})
		info := apperrors.ParseError(err, "review application")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
	}
}
