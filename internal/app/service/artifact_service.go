package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/odvhub/odvhub-backend/internal/storage"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"github.com/odvhub/odvhub-backend/pkg/mailer"
	"github.com/odvhub/odvhub-backend/pkg/pdf"
)

var (
	ErrNoArtifact = errors.New("application has no generated document")
)

// ArtifactService renders the summary PDF of an application, stores it, and
// mails a copy to the applicant. Generation never touches application status;
// a failed render or send leaves the application exactly as it was, minus the
// artifact.
type ArtifactService interface {
	// Generate renders and stores the document, records its storage key on
	// the application, and mails it to the applicant. The mail step is best
	// effort. Regeneration stores under the same key, replacing the old
	// document.
	Generate(ctx context.Context, app *model.Application) (string, error)
	Open(ctx context.Context, app *model.Application) (io.ReadCloser, error)
	Remove(ctx context.Context, app *model.Application) error
}

type artifactService struct {
	appRepo  repository.ApplicationRepository
	renderer pdf.Renderer
	store    storage.ArtifactStorage
	mailer   mailer.Mailer
}

func NewArtifactService(
	appRepo repository.ApplicationRepository,
	renderer pdf.Renderer,
	store storage.ArtifactStorage,
	m mailer.Mailer,
) ArtifactService {
	return &artifactService{
		appRepo:  appRepo,
		renderer: renderer,
		store:    store,
		mailer:   m,
	}
}

func (s *artifactService) Generate(ctx context.Context, app *model.Application) (string, error) {
	logger.Info("Generating application document", map[string]interface{}{
		"application_id": app.ID,
		"code":           app.Code,
	})

	payload, err := app.DecodePayload()
	if err != nil {
		logger.Error("Failed to decode application payload for rendering", err, map[string]interface{}{
			"application_id": app.ID,
		})
		return "", err
	}

	data, err := s.renderer.Render(app, payload)
	if err != nil {
		logger.Error("Failed to render application document", err, map[string]interface{}{
			"application_id": app.ID,
		})
		return "", err
	}

	key := artifactKey(app)
	if err := s.store.Save(ctx, key, data); err != nil {
		logger.Error("Failed to store application document", err, map[string]interface{}{
			"application_id": app.ID,
			"key":            key,
		})
		return "", err
	}

	// The reference is updated only after the object exists, so pdf_file
	// never points at a document that was not written.
	if err := s.appRepo.UpdatePDFFile(app.ID, key); err != nil {
		return "", err
	}
	app.PDFFile = key

	s.mailToApplicant(app, payload, data)

	logger.Info("Application document generated", map[string]interface{}{
		"application_id": app.ID,
		"key":            key,
	})
	return key, nil
}

func (s *artifactService) Open(ctx context.Context, app *model.Application) (io.ReadCloser, error) {
	if app.PDFFile == "" {
		return nil, ErrNoArtifact
	}
	return s.store.Open(ctx, app.PDFFile)
}

func (s *artifactService) Remove(ctx context.Context, app *model.Application) error {
	if app.PDFFile == "" {
		return nil
	}
	if err := s.store.Delete(ctx, app.PDFFile); err != nil {
		logger.Warn("Failed to delete application document from storage", map[string]interface{}{
			"application_id": app.ID,
			"key":            app.PDFFile,
			"error":          err.Error(),
		})
		return err
	}
	return nil
}

func (s *artifactService) mailToApplicant(app *model.Application, payload *model.ApplicationPayload, data []byte) {
	subject := fmt.Sprintf("Membership application %s received", app.Code)
	body := fmt.Sprintf(
		"<p>Dear %s %s,</p>"+
			"<p>we received your membership application. Your application code is <strong>%s</strong>; "+
			"keep it to check the status of your request.</p>"+
			"<p>A summary of your declarations is attached.</p>",
		payload.FirstName, payload.LastName, app.Code,
	)

	if err := s.mailer.SendWithAttachment(
		[]string{payload.Email}, subject, body,
		fmt.Sprintf("application-%s.pdf", app.Code), data,
	); err != nil {
		// Mail is a courtesy copy; the stored document is the artifact.
		logger.Warn("Failed to email application document to applicant", map[string]interface{}{
			"application_id": app.ID,
			"error":          err.Error(),
		})
	}
}

func artifactKey(app *model.Application) string {
	return fmt.Sprintf("applications/%s.pdf", app.Code)
}
