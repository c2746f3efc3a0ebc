// Package telemetry holds the process-wide prometheus collectors.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	FormSubmissions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hirekit_form_submissions_total",
		Help: "Submissions recorded against application forms",
	})
	PublicFormMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hirekit_public_form_misses_total",
		Help: "Public form lookups that resolved to no visible form",
	})
	StageTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hirekit_pipeline_stage_transitions_total",
		Help: "Hiring process stage changes by stage policy and direction",
	}, []string{"policy", "direction"})
	StatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hirekit_pipeline_status_transitions_total",
		Help: "Hiring process status changes",
	}, []string{"from", "to"})
	VersionConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hirekit_version_conflicts_total",
		Help: "Optimistic concurrency conflicts by aggregate",
	}, []string{"aggregate"})
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hirekit_rate_limit_rejects_total",
		Help: "Public requests rejected by the rate limiter",
	})
)

// Register adds every collector to the default registry once
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			FormSubmissions,
			PublicFormMisses,
			StageTransitions,
			StatusTransitions,
			VersionConflicts,
			RateLimitRejects,
		)
	})
}

// Handler exposes the /metrics endpoint
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
