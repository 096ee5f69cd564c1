// Package metrics holds the Prometheus collectors the server exports on
// /metrics.
//
// Collectors are registered on the Registerer passed to New rather than the
// global default, so every server (and every test) gets its own set.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engagement actions, used as the "action" label.
const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
	ActionSave   = "save"
	ActionUnsave = "unsave"
)

type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Engagements     *prometheus.CounterVec
	CommentsCreated prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photofeed_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "photofeed_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		Engagements: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photofeed_engagements_total",
				Help: "Total number of like and save toggles by action",
			},
			[]string{"action"},
		),
		CommentsCreated: f.NewCounter(
			prometheus.CounterOpts{
				Name: "photofeed_comments_created_total",
				Help: "Total number of comments created",
			},
		),
	}
}

// Engaged counts one like/unlike/save/unsave request.
func (m *Metrics) Engaged(action string) {
	m.Engagements.WithLabelValues(action).Inc()
}
