package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/service"
	apperrors "github.com/odvhub/odvhub-backend/internal/errors"
	"github.com/odvhub/odvhub-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

// ExportApplications downloads the application register as a workbook
// GET /api/v1/admin/exports/applications?status=pending&type=adult
func (ctrl *ExportController) ExportApplications(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := model.ApplicationStatus(c.Query("status"))
	appType := model.ApplicationType(c.Query("type"))

	data, filename, err := ctrl.exportService.ExportApplications(status, appType)
	if err != nil {
		log.Error("Failed to export applications", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportMembers downloads the member roster as a workbook
// GET /api/v1/admin/exports/members
func (ctrl *ExportController) ExportMembers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, filename, err := ctrl.exportService.ExportMembers()
	if err != nil {
		log.Error("Failed to export members", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
