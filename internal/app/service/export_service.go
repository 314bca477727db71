package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ExportService produces Excel workbooks of the application register and the
// member roster for the back office. Exports read only; they never touch
// application or member state.
type ExportService interface {
	ExportApplications(status model.ApplicationStatus, appType model.ApplicationType) ([]byte, string, error)
	ExportMembers() ([]byte, string, error)
}

type exportService struct {
	appRepo    repository.ApplicationRepository
	memberRepo repository.MemberRepository
}

func NewExportService(appRepo repository.ApplicationRepository, memberRepo repository.MemberRepository) ExportService {
	return &exportService{
		appRepo:    appRepo,
		memberRepo: memberRepo,
	}
}

func (s *exportService) ExportApplications(status model.ApplicationStatus, appType model.ApplicationType) ([]byte, string, error) {
	apps, err := s.appRepo.List(status, appType)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Applications"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Code", "Type", "Status", "First name", "Last name", "Email", "Submitted at", "Reviewed at", "Rejection reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, app := range apps {
		reviewedAt := ""
		if app.ReviewedAt != nil {
			reviewedAt = app.ReviewedAt.Format("2006-01-02 15:04")
		}
		values := []interface{}{
			app.Code,
			string(app.Type),
			string(app.Status),
			app.FirstName,
			app.LastName,
			app.Email,
			app.SubmittedAt.Format("2006-01-02 15:04"),
			reviewedAt,
			app.RejectionReason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to write applications export", err, nil)
		return nil, "", err
	}

	logger.Info("Applications export generated", map[string]interface{}{
		"count": len(apps),
	})
	return buf.Bytes(), "applications.xlsx", nil
}

func (s *exportService) ExportMembers() ([]byte, string, error) {
	members, err := s.memberRepo.List()
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Members"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Registration number", "Type", "First name", "Last name", "Tax code", "City", "Phone", "Email", "Joined at", "Guardians"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, member := range members {
		var guardians []string
		for _, g := range member.Guardians {
			guardians = append(guardians, fmt.Sprintf("%s %s (%s)", g.FirstName, g.LastName, g.Type))
		}
		values := []interface{}{
			member.RegistrationNumber,
			string(member.Type),
			member.FirstName,
			member.LastName,
			member.TaxCode,
			member.City,
			member.Phone,
			member.Email,
			member.JoinedAt.Format("2006-01-02"),
			strings.Join(guardians, "; "),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to write members export", err, nil)
		return nil, "", err
	}

	logger.Info("Members export generated", map[string]interface{}{
		"count": len(members),
	})
	return buf.Bytes(), "members.xlsx", nil
}
