package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/durga1023/ContactUsRepository/internal/captcha"
	"github.com/durga1023/ContactUsRepository/internal/services"
	appErrors "github.com/durga1023/ContactUsRepository/pkg/errors"
	"github.com/durga1023/ContactUsRepository/pkg/logger"
	"github.com/durga1023/ContactUsRepository/pkg/metrics"
	"github.com/durga1023/ContactUsRepository/pkg/response"
)

const captchaErrorMessage = "CAPTCHA verification failed. Please try again."

// SubmissionForm binds the contact form fields. The CAPTCHA token is consumed
// during verification and never persisted.
type SubmissionForm struct {
	FirstName    string `form:"firstName" json:"firstName" validate:"required,max=50"`
	LastName     string `form:"lastName" json:"lastName" validate:"omitempty,max=50"`
	Email        string `form:"email" json:"email" validate:"required,email"`
	Phone        string `form:"phone" json:"phone" validate:"omitempty,phone"`
	Zip          string `form:"zip" json:"zip" validate:"omitempty,max=10"`
	City         string `form:"city" json:"city" validate:"omitempty,max=30"`
	State        string `form:"state" json:"state" validate:"omitempty,max=30"`
	Comments     string `form:"comments" json:"comments" validate:"omitempty,max=500"`
	CaptchaToken string `form:"captchaToken" json:"captchaToken"`
}

// contactView is the data handed to the contact template.
type contactView struct {
	Form    SubmissionForm
	Errors  map[string]string
	Error   string
	Message string
	SiteKey string
}

// ContactHandler serves the contact form and accepts submissions.
type ContactHandler struct {
	service *services.SubmissionService
	siteKey string
	log     *zap.Logger
}

// NewContactHandler constructs the handler. siteKey is the public CAPTCHA
// widget key rendered into the form; it may be empty in tests.
func NewContactHandler(service *services.SubmissionService, siteKey string) (*ContactHandler, error) {
	if service == nil {
		return nil, errors.New("contact handler: service is required")
	}
	return &ContactHandler{
		service: service,
		siteKey: siteKey,
		log:     logger.WithModule("contact"),
	}, nil
}

// Show renders the empty contact form.
func (h *ContactHandler) Show(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", contactView{SiteKey: h.siteKey})
}

// Submit accepts a form-encoded submission and re-renders the contact view
// with field errors, a CAPTCHA error, or a personalised acknowledgment.
func (h *ContactHandler) Submit(c *gin.Context) {
	var form SubmissionForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, http.StatusBadRequest, form, "Invalid form submission.")
		return
	}

	if fields := validateForm(&form); len(fields) > 0 {
		metrics.Submissions.WithLabelValues("validation_failed").Inc()
		h.log.Debug("submission failed validation", zap.Int("field_errors", len(fields)))
		c.HTML(http.StatusOK, "contact.html", contactView{
			Form:    form,
			Errors:  fields,
			SiteKey: h.siteKey,
		})
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), h.toInput(form))
	if err != nil {
		switch {
		case errors.Is(err, captcha.ErrTokenMissing), errors.Is(err, captcha.ErrRejected):
			c.HTML(http.StatusOK, "contact.html", contactView{
				Form:    form,
				Error:   captchaErrorMessage,
				SiteKey: h.siteKey,
			})
		default:
			h.log.Error("submission failed", zap.Error(err))
			h.renderError(c, http.StatusInternalServerError, form, "Something went wrong. Please try again later.")
		}
		return
	}

	// Success renders a fresh form; the previous input is never echoed back.
	c.HTML(http.StatusOK, "contact.html", contactView{
		Message: acknowledgment(submission.DisplayName()),
		SiteKey: h.siteKey,
	})
}

// SubmitJSON accepts the same submission as a JSON payload and answers with
// the API envelope instead of a rendered view.
func (h *ContactHandler) SubmitJSON(c *gin.Context) {
	var form SubmissionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return
	}

	if fields := validateForm(&form); len(fields) > 0 {
		metrics.Submissions.WithLabelValues("validation_failed").Inc()
		response.FieldErrors(c, fields)
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), h.toInput(form))
	if err != nil {
		switch {
		case errors.Is(err, captcha.ErrTokenMissing), errors.Is(err, captcha.ErrRejected):
			response.Error(c, appErrors.ErrCaptchaFailed)
		default:
			h.log.Error("submission failed", zap.Error(err))
			response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":      submission.ID,
		"message": acknowledgment(submission.DisplayName()),
	})
}

func (h *ContactHandler) toInput(form SubmissionForm) services.SubmitInput {
	return services.SubmitInput{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		Phone:        form.Phone,
		Zip:          form.Zip,
		City:         form.City,
		State:        form.State,
		Comments:     form.Comments,
		CreatedAt:    time.Now().UTC(),
		CaptchaToken: form.CaptchaToken,
	}
}

func (h *ContactHandler) renderError(c *gin.Context, status int, form SubmissionForm, message string) {
	c.HTML(status, "contact.html", contactView{
		Form:    form,
		Error:   message,
		SiteKey: h.siteKey,
	})
}

func acknowledgment(name string) string {
	return fmt.Sprintf("Thank you, %s. Your message has been received.", name)
}
