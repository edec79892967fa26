package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durga1023/ContactUsRepository/internal/secrets"
)

func staticSecrets() secrets.Source {
	return secrets.NewStaticSource(map[string]string{
		"contactformcredentials/SECRET_KEY": "server-secret",
	})
}

func newTestVerifier(t *testing.T, handler http.HandlerFunc, minScore float64) (Verifier, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	v, err := NewRecaptchaVerifier(Config{
		VerifyURL: srv.URL,
		MinScore:  minScore,
	}, staticSecrets())
	require.NoError(t, err)

	return v, srv
}

func TestVerifyPasses(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "server-secret", r.PostForm.Get("secret"))
		assert.Equal(t, "client-token", r.PostForm.Get("response"))
		w.Write([]byte(`{"success":true,"score":0.95}`))
	}, 0.9)

	assert.NoError(t, v.Verify(context.Background(), "client-token"))
}

func TestVerifyEmptyTokenSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"success":true,"score":1}`))
	}, 0.5)

	err := v.Verify(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrTokenMissing)
	assert.Zero(t, calls.Load())
}

func TestVerifyRejectedByService(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}, 0.5)

	assert.ErrorIs(t, v.Verify(context.Background(), "bad-token"), ErrRejected)
}

func TestVerifyScoreBelowThreshold(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"score":0.3}`))
	}, 0.9)

	assert.ErrorIs(t, v.Verify(context.Background(), "weak-token"), ErrRejected)
}

func TestVerifyEmptyBodyIsUnavailable(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, 0.5)

	assert.ErrorIs(t, v.Verify(context.Background(), "token"), ErrUnavailable)
}

func TestVerifyMalformedBodyIsUnavailable(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":`))
	}, 0.5)

	assert.ErrorIs(t, v.Verify(context.Background(), "token"), ErrUnavailable)
}

func TestVerifyServerErrorIsUnavailable(t *testing.T) {
	v, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}, 0.5)

	assert.ErrorIs(t, v.Verify(context.Background(), "token"), ErrUnavailable)
}

func TestVerifyUnreachableServiceIsUnavailable(t *testing.T) {
	v, srv := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {}, 0.5)
	srv.Close()

	assert.ErrorIs(t, v.Verify(context.Background(), "token"), ErrUnavailable)
}

func TestVerifyMissingSecretIsConfigurationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no call should be made without a secret")
	}))
	t.Cleanup(srv.Close)

	v, err := NewRecaptchaVerifier(Config{VerifyURL: srv.URL}, secrets.NewStaticSource(nil))
	require.NoError(t, err)

	assert.ErrorIs(t, v.Verify(context.Background(), "token"), ErrNotConfigured)
}

func TestNewRecaptchaVerifierValidation(t *testing.T) {
	_, err := NewRecaptchaVerifier(Config{}, nil)
	assert.Error(t, err)

	_, err = NewRecaptchaVerifier(Config{MinScore: 1.5}, staticSecrets())
	assert.Error(t, err)
}
