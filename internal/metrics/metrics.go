package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orbit_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	promoSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_promo_sent_total",
			Help: "Promotional notifications delivered, by category",
		},
		[]string{"category"},
	)

	promoSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_promo_skipped_total",
			Help: "Users skipped during a promotional pass, by reason",
		},
		[]string{"reason"},
	)

	promoSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_promo_send_failures_total",
			Help: "Push send attempts that failed",
		},
	)

	pushTokensRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_push_tokens_removed_total",
			Help: "Push tokens cleared after a permanent-invalid send error",
		},
	)

	bookingNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_booking_notifications_total",
			Help: "Booking confirmation sends by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	analyticsEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_analytics_events_total",
			Help: "Analytics events recorded, by outcome",
		},
		[]string{"outcome"},
	)

	rateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_rate_limit_rejections_total",
			Help: "Requests rejected by the API rate limiter",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPromoSent records one delivered promotional notification
func RecordPromoSent(category string) {
	promoSent.WithLabelValues(category).Inc()
}

// RecordPromoSkipped records a user skipped during a promotional pass
func RecordPromoSkipped(reason string) {
	promoSkipped.WithLabelValues(reason).Inc()
}

// RecordPromoSendFailure records a failed push send attempt
func RecordPromoSendFailure() {
	promoSendFailures.Inc()
}

// RecordPushTokenRemoved records a cleared push token
func RecordPushTokenRemoved() {
	pushTokensRemoved.Inc()
}

// RecordBookingNotification records a booking confirmation send attempt
func RecordBookingNotification(channel, outcome string) {
	bookingNotifications.WithLabelValues(channel, outcome).Inc()
}

// RecordAnalyticsEvent records an appended analytics event
func RecordAnalyticsEvent(outcome string) {
	analyticsEvents.WithLabelValues(outcome).Inc()
}

// RecordRateLimitRejection records a rate limit rejection
func RecordRateLimitRejection() {
	rateLimitRejections.Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		RecordRequest(r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}
