package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submissions counts contact form submissions by outcome
	// (accepted|validation_failed|captcha_failed|error).
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contactform_submissions_total",
			Help: "Total number of contact form submissions",
		},
		[]string{"result"},
	)

	// CaptchaVerifications counts outbound CAPTCHA checks by outcome
	// (passed|rejected|unavailable|misconfigured).
	CaptchaVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contactform_captcha_verifications_total",
			Help: "Total number of CAPTCHA verification attempts",
		},
		[]string{"result"},
	)

	// RateLimited counts requests rejected by the per-IP rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contactform_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contactform_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
