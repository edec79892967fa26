package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durga1023/ContactUsRepository/internal/app"
	"github.com/durga1023/ContactUsRepository/internal/database/testutil"
	"github.com/durga1023/ContactUsRepository/internal/middleware"
)

type passVerifier struct{}

func (passVerifier) Verify(context.Context, string) error { return nil }

func newRouterForTest(t *testing.T, cfg *app.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	router, err := NewRouter(db, passVerifier{}, cfg, middleware.NewMemoryRateStore(), nil)
	require.NoError(t, err)
	return router
}

func defaultTestConfig(t *testing.T) *app.Config {
	t.Helper()
	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestNewRouterRequiresCollaborators(t *testing.T) {
	cfg := defaultTestConfig(t)
	db := testutil.MustOpenTestDB(t)

	_, err := NewRouter(nil, passVerifier{}, cfg, nil, nil)
	assert.Error(t, err)

	_, err = NewRouter(db, nil, cfg, nil, nil)
	assert.Error(t, err)

	_, err = NewRouter(db, passVerifier{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestRootRedirectsToContact(t *testing.T) {
	router := newRouterForTest(t, defaultTestConfig(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/contact", rec.Header().Get("Location"))
}

func TestContactRoutesAreRegistered(t *testing.T) {
	router := newRouterForTest(t, defaultTestConfig(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Contact Us")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmissionFlowThroughRouter(t *testing.T) {
	router := newRouterForTest(t, defaultTestConfig(t))

	form := url.Values{
		"firstName":    {"Jane"},
		"email":        {"jane@example.com"},
		"captchaToken": {"tok"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thank you, Jane. Your message has been received.")
}

func TestSubmissionsAreRateLimited(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.RateLimit.MaxRequests = 1
	router := newRouterForTest(t, cfg)

	form := url.Values{
		"firstName":    {"Jane"},
		"email":        {"jane@example.com"},
		"captchaToken": {"tok"},
	}

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "198.51.100.7:4242"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusTooManyRequests, send().Code)
}

func TestMetricsEndpointHonoursConfig(t *testing.T) {
	router := newRouterForTest(t, defaultTestConfig(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	cfg := defaultTestConfig(t)
	cfg.Monitoring.Prometheus.Enabled = false
	disabled := newRouterForTest(t, cfg)
	rec = httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticAssetsAreServed(t *testing.T) {
	router := newRouterForTest(t, defaultTestConfig(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/contact.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "grecaptcha.execute")
}

func TestUnknownRouteReturnsJSONNotFound(t *testing.T) {
	router := newRouterForTest(t, defaultTestConfig(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}
