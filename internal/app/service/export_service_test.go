package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupExportServiceTest(t *testing.T, f *applicationServiceFixture) ExportService {
	t.Helper()
	return NewExportService(
		repository.NewApplicationRepository(f.db),
		repository.NewMemberRepository(f.db),
	)
}

func TestExportService_Applications(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)
	submitJunior(t, f)

	exportService := setupExportServiceTest(t, f)
	data, filename, err := exportService.ExportApplications("", "")
	require.NoError(t, err)
	assert.Equal(t, "applications.xlsx", filename)

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 applications

	assert.Equal(t, "Code", rows[0][0])
	codes := []string{rows[1][0], rows[2][0]}
	assert.Contains(t, codes, app.Code)
}

func TestExportService_Applications_StatusFilter(t *testing.T) {
	f := setupApplicationServiceTest(t)
	adult := submitAdult(t, f)
	submitJunior(t, f)

	_, _, err := f.service.Approve(context.Background(), adult.ID, f.reviewer.ID)
	require.NoError(t, err)

	exportService := setupExportServiceTest(t, f)
	data, _, err := exportService.ExportApplications(model.ApplicationStatusApproved, "")
	require.NoError(t, err)

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + 1 approved
	assert.Equal(t, adult.Code, rows[1][0])
}

func TestExportService_Members(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitJunior(t, f)

	_, member, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	exportService := setupExportServiceTest(t, f)
	data, filename, err := exportService.ExportMembers()
	require.NoError(t, err)
	assert.Equal(t, "members.xlsx", filename)

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Members")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, member.LastName, rows[1][3])
	assert.Contains(t, rows[1][9], "Anna Rossi (mother)")
}
