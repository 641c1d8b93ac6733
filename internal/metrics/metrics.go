// Package metrics holds the prometheus collectors shared by the kiosk, the
// admin table and the local web server.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clinic_kiosk"

// Action outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Kiosk and admin actions by name and outcome.",
	}, []string{"action", "outcome"})

	FramesCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_captured_total",
		Help:      "Camera frames captured per capture profile.",
	}, []string{"profile"})

	Recognitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recognitions_total",
		Help:      "Face recognition results.",
	}, []string{"result"})

	QueueTickets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queue_tickets_total",
		Help:      "Queue numbers issued per department.",
	}, []string{"poli"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Local web server request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ErrRejected marks an action refused before any remote call, such as a
// failed form validation.
var ErrRejected = errors.New("action rejected")

// Outcome classifies an action result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrRejected):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// ObserveAction counts one action.
func ObserveAction(action string, err error) {
	ActionsTotal.WithLabelValues(action, Outcome(err)).Inc()
}

// ObserveRequest records a request duration.
func ObserveRequest(method, route string, status int, start time.Time) {
	HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
