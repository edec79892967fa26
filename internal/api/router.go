package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/durga1023/ContactUsRepository/internal/app"
	"github.com/durga1023/ContactUsRepository/internal/captcha"
	"github.com/durga1023/ContactUsRepository/internal/handlers"
	"github.com/durga1023/ContactUsRepository/internal/middleware"
	"github.com/durga1023/ContactUsRepository/internal/services"
	"github.com/durga1023/ContactUsRepository/pkg/mail"
	"github.com/durga1023/ContactUsRepository/web"
)

// NewRouter builds the Gin engine, wires middleware and registers the
// contact form routes.
func NewRouter(db *gorm.DB, verifier captcha.Verifier, cfg *app.Config, rateStore middleware.RateStore, mailer mail.Mailer) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if verifier == nil {
		return nil, fmt.Errorf("captcha verifier must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := web.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("open static assets: %w", err)
	}
	r.StaticFS("/static", static)

	service, err := services.NewSubmissionService(db, verifier, services.Options{
		Mailer:   mailer,
		NotifyTo: cfg.Email.NotifyTo,
	})
	if err != nil {
		return nil, err
	}

	contactHandler, err := handlers.NewContactHandler(service, cfg.Captcha.SiteKey)
	if err != nil {
		return nil, err
	}

	// Submissions are rate limited per client address; reads are not.
	limited := middleware.RateLimit(rateStore, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/contact") })
	r.GET("/contact", contactHandler.Show)
	r.POST("/contact", limited, contactHandler.Submit)
	r.POST("/api/contact", limited, contactHandler.SubmitJSON)

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
