package service

import (
	"context"
	"testing"
	"time"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisioning_RegistrationNumbersAreMonotonic(t *testing.T) {
	f := setupApplicationServiceTest(t)

	first := submitAdult(t, f)
	second := submitJunior(t, f)

	_, m1, err := f.service.Approve(context.Background(), first.ID, f.reviewer.ID)
	require.NoError(t, err)
	_, m2, err := f.service.Approve(context.Background(), second.ID, f.reviewer.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, m1.RegistrationNumber)
	assert.Equal(t, 2, m2.RegistrationNumber)
}

func TestProvisioning_NumbersAreNeverReused(t *testing.T) {
	f := setupApplicationServiceTest(t)

	first := submitAdult(t, f)
	_, m1, err := f.service.Approve(context.Background(), first.ID, f.reviewer.ID)
	require.NoError(t, err)

	// member leaves the association; the row is soft deleted
	require.NoError(t, f.db.Delete(&model.Member{}, m1.ID).Error)

	second := submitJunior(t, f)
	_, m2, err := f.service.Approve(context.Background(), second.ID, f.reviewer.ID)
	require.NoError(t, err)

	assert.Equal(t, m1.RegistrationNumber+1, m2.RegistrationNumber)
}

func TestProvisioning_JuniorChildRowsAreFlattened(t *testing.T) {
	f := setupApplicationServiceTest(t)

	payload := validJuniorPayload()
	payload.Licenses = []model.LicenseEntry{
		{Type: "B", Number: "AV1234567", IssuedAt: "2024-01-15"},
	}
	payload.Courses = []model.CourseEntry{
		{Name: "First aid basics", Provider: "CRI", Year: 2023},
	}

	app, reasons, err := f.service.Submit(context.Background(), SubmitInput{
		Type:    model.ApplicationTypeJunior,
		Payload: payload,
	})
	require.NoError(t, err)
	require.Empty(t, reasons)

	_, member, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	var stored model.Member
	require.NoError(t, f.db.Preload("Licenses").Preload("Courses").Preload("Guardians").
		First(&stored, member.ID).Error)

	assert.Equal(t, model.MemberTypeJunior, stored.Type)
	require.Len(t, stored.Guardians, 1)
	assert.Equal(t, model.GuardianTypeMother, stored.Guardians[0].Type)
	assert.Equal(t, "Anna", stored.Guardians[0].FirstName)

	require.Len(t, stored.Licenses, 1)
	assert.Equal(t, "AV1234567", stored.Licenses[0].Number)

	require.Len(t, stored.Courses, 1)
	assert.Equal(t, "First aid basics", stored.Courses[0].Name)
	assert.Equal(t, 2023, stored.Courses[0].Year)
}

func TestProvisioning_JoinedAtIsSet(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	before := time.Now().Add(-time.Minute)
	_, member, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	assert.True(t, member.JoinedAt.After(before))
}
