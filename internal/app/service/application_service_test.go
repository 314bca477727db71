package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/odvhub/odvhub-backend/internal/db"
	"github.com/odvhub/odvhub-backend/pkg/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStorage is an in-memory artifact store for tests.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	saves   int
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	s.saves++
	return nil
}

func (s *memStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// recordingMailer collects outbound mail instead of sending it.
type recordingMailer struct {
	mu    sync.Mutex
	sends []recordedMail
}

type recordedMail struct {
	To       []string
	Subject  string
	Filename string
}

func (m *recordingMailer) Send(to []string, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, recordedMail{To: to, Subject: subject})
	return nil
}

func (m *recordingMailer) SendWithAttachment(to []string, subject, htmlBody, filename string, attachment []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, recordedMail{To: to, Subject: subject, Filename: filename})
	return nil
}

// stubVerifier answers every captcha challenge with a fixed verdict.
type stubVerifier struct {
	pass bool
}

func (v *stubVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return v.pass, nil
}

type applicationServiceFixture struct {
	service  ApplicationService
	db       *gorm.DB
	storage  *memStorage
	mailer   *recordingMailer
	captcha  *stubVerifier
	reviewer *model.User
}

func setupApplicationServiceTest(t *testing.T) *applicationServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	appRepo := repository.NewApplicationRepository(testDB)
	memberRepo := repository.NewMemberRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)

	store := newMemStorage()
	m := &recordingMailer{}
	verifier := &stubVerifier{pass: true}

	artifactService := NewArtifactService(appRepo, pdf.NewRenderer("Test Association"), store, m)
	notificationService := NewNotificationService(notificationRepo, userRepo, nil)
	applicationService := NewApplicationService(
		testDB,
		appRepo,
		NewConsentValidator(),
		NewProvisioningService(memberRepo),
		artifactService,
		notificationService,
		verifier,
		m,
	)

	reviewer := &model.User{
		Email:        "reviewer@example.com",
		PasswordHash: "hash",
		Name:         "Reviewer",
		Role:         model.RoleReviewer,
	}
	testDB.Create(reviewer)

	return &applicationServiceFixture{
		service:  applicationService,
		db:       testDB,
		storage:  store,
		mailer:   m,
		captcha:  verifier,
		reviewer: reviewer,
	}
}

func submitAdult(t *testing.T, f *applicationServiceFixture) *model.Application {
	t.Helper()
	payload := validAdultPayload()
	app, reasons, err := f.service.Submit(context.Background(), SubmitInput{
		Type:    model.ApplicationTypeAdult,
		Payload: payload,
	})
	require.NoError(t, err)
	require.Empty(t, reasons)
	return app
}

func submitJunior(t *testing.T, f *applicationServiceFixture) *model.Application {
	t.Helper()
	payload := validJuniorPayload()
	app, reasons, err := f.service.Submit(context.Background(), SubmitInput{
		Type:    model.ApplicationTypeJunior,
		Payload: payload,
	})
	require.NoError(t, err)
	require.Empty(t, reasons)
	return app
}

func TestApplicationService_Submit_Adult(t *testing.T) {
	f := setupApplicationServiceTest(t)

	payload := validAdultPayload()
	app, reasons, err := f.service.Submit(context.Background(), SubmitInput{
		Type:    model.ApplicationTypeAdult,
		Payload: payload,
	})
	require.NoError(t, err)
	require.Empty(t, reasons)

	assert.Regexp(t, `^DOM-\d{4}-[0-9A-F]{6}$`, app.Code)
	assert.Equal(t, model.ApplicationStatusPending, app.Status)
	assert.Equal(t, "Mario", app.FirstName)
	assert.Equal(t, "mario.rossi@example.com", app.Email)

	// the stored payload is the submitted form, verbatim
	var stored model.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	decoded, err := stored.DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, payload, *decoded)

	// the summary document was stored and referenced
	assert.NotEmpty(t, stored.PDFFile)
	assert.Contains(t, f.storage.objects, stored.PDFFile)

	// applicant received the confirmation with the attachment
	require.Len(t, f.mailer.sends, 1)
	assert.Equal(t, []string{"mario.rossi@example.com"}, f.mailer.sends[0].To)
	assert.NotEmpty(t, f.mailer.sends[0].Filename)

	// staff notification row exists for the reviewer
	var notifications []model.Notification
	require.NoError(t, f.db.Where("user_id = ?", f.reviewer.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationTypeApplicationSubmitted, notifications[0].Type)
}

func TestApplicationService_Submit_MissingConsent(t *testing.T) {
	f := setupApplicationServiceTest(t)

	payload := validAdultPayload()
	payload.Consents.PrivacyPolicy = false

	app, reasons, err := f.service.Submit(context.Background(), SubmitInput{
		Type:    model.ApplicationTypeAdult,
		Payload: payload,
	})
	require.NoError(t, err)
	assert.Nil(t, app)
	assert.Equal(t, []string{"privacy policy consent is required"}, reasons)

	var count int64
	f.db.Model(&model.Application{}).Count(&count)
	assert.Zero(t, count)
}

func TestApplicationService_Submit_JuniorWithoutGuardian(t *testing.T) {
	f := setupApplicationServiceTest(t)

	payload := validJuniorPayload()
	payload.Guardians = nil

	app, reasons, err := f.service.Submit(context.Background(), SubmitInput{
		Type:    model.ApplicationTypeJunior,
		Payload: payload,
	})
	require.NoError(t, err)
	assert.Nil(t, app)
	assert.Contains(t, reasons, "at least one guardian is required for junior applicants")

	var count int64
	f.db.Model(&model.Application{}).Count(&count)
	assert.Zero(t, count)
}

func TestApplicationService_Submit_CaptchaFailure(t *testing.T) {
	f := setupApplicationServiceTest(t)
	f.captcha.pass = false

	_, _, err := f.service.Submit(context.Background(), SubmitInput{
		Type:    model.ApplicationTypeAdult,
		Payload: validAdultPayload(),
	})
	assert.ErrorIs(t, err, ErrCaptchaFailed)

	var count int64
	f.db.Model(&model.Application{}).Count(&count)
	assert.Zero(t, count)
}

func TestApplicationService_Approve(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	approved, member, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, f.reviewer.ID, *approved.ReviewedBy)
	assert.NotNil(t, approved.ReviewedAt)

	assert.Equal(t, 1, member.RegistrationNumber)
	assert.Equal(t, model.MemberTypeAdult, member.Type)
	assert.Equal(t, app.ID, member.ApplicationID)
	assert.Equal(t, "RSSMRA85T10A562S", member.TaxCode)
}

func TestApplicationService_Approve_Twice(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	_, _, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	_, _, err = f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// exactly one member exists
	var count int64
	f.db.Model(&model.Member{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestApplicationService_Approve_RollsBackOnProvisioningFailure(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	// corrupt the stored payload so provisioning re-validation fails
	require.NoError(t, f.db.Model(&model.Application{}).Where("id = ?", app.ID).
		Update("payload", `{"first_name":"","last_name":"","tax_code":"x"}`).Error)

	_, _, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	assert.ErrorIs(t, err, ErrPayloadIncomplete)

	// the transition rolled back with the member creation
	var stored model.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, model.ApplicationStatusPending, stored.Status)
	assert.Nil(t, stored.ReviewedBy)

	var count int64
	f.db.Model(&model.Member{}).Count(&count)
	assert.Zero(t, count)
}

func TestApplicationService_Approve_Concurrent(t *testing.T) {
	f := setupApplicationServiceTest(t)

	// a single connection keeps both goroutines on the same in-memory
	// database and serializes their writes
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	app := submitAdult(t, f)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyProcessed):
			conflicted++
		default:
			t.Fatalf("unexpected approve error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	// exactly one winner provisioned exactly one member
	var count int64
	f.db.Model(&model.Member{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var stored model.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, model.ApplicationStatusApproved, stored.Status)
}

func TestApplicationService_Reject(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	rejected, err := f.service.Reject(context.Background(), app.ID, f.reviewer.ID, "incomplete documentation")
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusRejected, rejected.Status)
	assert.Equal(t, "incomplete documentation", rejected.RejectionReason)
	require.NotNil(t, rejected.ReviewedBy)
	assert.Equal(t, f.reviewer.ID, *rejected.ReviewedBy)

	// rejection never provisions a member
	var count int64
	f.db.Model(&model.Member{}).Count(&count)
	assert.Zero(t, count)
}

func TestApplicationService_Reject_AfterApprove(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	_, _, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	_, err = f.service.Reject(context.Background(), app.ID, f.reviewer.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestApplicationService_Delete_Pending(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	var stored model.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	require.NotEmpty(t, stored.PDFFile)

	err := f.service.Delete(context.Background(), app.ID)
	require.NoError(t, err)

	var count int64
	f.db.Model(&model.Application{}).Count(&count)
	assert.Zero(t, count)

	// the stored document went with it
	assert.NotContains(t, f.storage.objects, stored.PDFFile)
}

func TestApplicationService_Delete_ApprovedForbidden(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	_, _, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	err = f.service.Delete(context.Background(), app.ID)
	assert.ErrorIs(t, err, ErrCannotDeleteApproved)

	var count int64
	f.db.Model(&model.Application{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestApplicationService_Delete_ApprovedRowSurvivesConditionalDelete(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	_, _, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	// a delete that lost the race with the approval matches no row
	appRepo := repository.NewApplicationRepository(f.db)
	var deleted bool
	err = f.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		deleted, txErr = appRepo.DeleteIfNotApproved(tx, app.ID)
		return txErr
	})
	require.NoError(t, err)
	assert.False(t, deleted)

	var count int64
	f.db.Model(&model.Application{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestApplicationService_Delete_MemberOutlivesApplication(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitJunior(t, f)

	_, member, err := f.service.Approve(context.Background(), app.ID, f.reviewer.ID)
	require.NoError(t, err)

	// the approved application cannot be deleted, but even a raw row removal
	// leaves the member untouched
	require.NoError(t, f.db.Exec("DELETE FROM applications WHERE id = ?", app.ID).Error)

	var stored model.Member
	require.NoError(t, f.db.First(&stored, member.ID).Error)
	assert.Equal(t, member.RegistrationNumber, stored.RegistrationNumber)
}

func TestApplicationService_RegeneratePDF_ReplacesDocument(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	var before model.Application
	require.NoError(t, f.db.First(&before, app.ID).Error)
	savesBefore := f.storage.saves

	regenerated, err := f.service.RegeneratePDF(context.Background(), app.ID)
	require.NoError(t, err)

	// same key, replaced content: regeneration never accumulates objects
	assert.Equal(t, before.PDFFile, regenerated.PDFFile)
	assert.Equal(t, savesBefore+1, f.storage.saves)
	assert.Len(t, f.storage.objects, 1)
}

func TestApplicationService_GetByCode(t *testing.T) {
	f := setupApplicationServiceTest(t)
	app := submitAdult(t, f)

	found, err := f.service.GetByCode(app.Code)
	require.NoError(t, err)
	assert.Equal(t, app.ID, found.ID)

	_, err = f.service.GetByCode("DOM-2026-FFFFFF")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplicationService_List_Filters(t *testing.T) {
	f := setupApplicationServiceTest(t)
	adult := submitAdult(t, f)
	submitJunior(t, f)

	_, _, err := f.service.Approve(context.Background(), adult.ID, f.reviewer.ID)
	require.NoError(t, err)

	pending, err := f.service.List(model.ApplicationStatusPending, "")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	juniors, err := f.service.List("", model.ApplicationTypeJunior)
	require.NoError(t, err)
	assert.Len(t, juniors, 1)

	all, err := f.service.List("", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// raw payload round-trip sanity for the stored form
func TestApplicationPayload_RoundTrip(t *testing.T) {
	payload := validJuniorPayload()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded model.ApplicationPayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, payload, decoded)
}
