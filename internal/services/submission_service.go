package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/durga1023/ContactUsRepository/internal/captcha"
	"github.com/durga1023/ContactUsRepository/internal/models"
	"github.com/durga1023/ContactUsRepository/pkg/logger"
	"github.com/durga1023/ContactUsRepository/pkg/mail"
	"github.com/durga1023/ContactUsRepository/pkg/metrics"
)

// SubmissionService runs the accepted-submission chain: CAPTCHA verification,
// a single insert, and an optional owner notification. Field validation
// happens before the service is called; the service never persists a
// submission whose token was not verified.
type SubmissionService struct {
	db       *gorm.DB
	verifier captcha.Verifier
	mailer   mail.Mailer
	notifyTo string
	log      *zap.Logger
}

// Options carries optional collaborators for the submission service.
type Options struct {
	// Mailer, when set together with NotifyTo, receives a notification for
	// every accepted submission. Delivery failures never fail the request.
	Mailer   mail.Mailer
	NotifyTo string
}

// NewSubmissionService constructs the service.
func NewSubmissionService(db *gorm.DB, verifier captcha.Verifier, opts Options) (*SubmissionService, error) {
	if db == nil {
		return nil, errors.New("submission service: db is required")
	}
	if verifier == nil {
		return nil, errors.New("submission service: verifier is required")
	}

	return &SubmissionService{
		db:       db,
		verifier: verifier,
		mailer:   opts.Mailer,
		notifyTo: opts.NotifyTo,
		log:      logger.WithModule("submissions"),
	}, nil
}

// SubmitInput carries one validated contact form submission.
type SubmitInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Zip          string
	City         string
	State        string
	Comments     string
	CreatedAt    time.Time
	CaptchaToken string
}

// Submit verifies the CAPTCHA token and persists the submission. CAPTCHA
// failures are returned as the captcha package sentinels so callers can map
// them onto the right view; persistence failures are fatal to the request.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*models.Submission, error) {
	if err := s.verifier.Verify(ctx, input.CaptchaToken); err != nil {
		switch {
		case errors.Is(err, captcha.ErrTokenMissing), errors.Is(err, captcha.ErrRejected):
			metrics.Submissions.WithLabelValues("captcha_failed").Inc()
		default:
			metrics.Submissions.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	submission := models.Submission{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Zip:       input.Zip,
		City:      input.City,
		State:     input.State,
		Comments:  input.Comments,
		CreatedAt: input.CreatedAt,
	}

	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		metrics.Submissions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("submission service: insert: %w", err)
	}

	metrics.Submissions.WithLabelValues("accepted").Inc()
	s.log.Info("submission accepted",
		zap.String("id", submission.ID),
		zap.String("email", submission.Email),
	)

	s.notify(ctx, &submission)

	return &submission, nil
}

func (s *SubmissionService) notify(ctx context.Context, submission *models.Submission) {
	if s.mailer == nil || s.notifyTo == "" {
		return
	}

	msg := mail.Message{
		To:      s.notifyTo,
		Subject: fmt.Sprintf("New contact form submission from %s", submission.DisplayName()),
		Body: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\n%s\n",
			submission.DisplayName(), submission.Email, submission.Phone, submission.Comments),
	}

	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Warn("submission notification failed",
			zap.String("id", submission.ID),
			zap.Error(err),
		)
	}
}
