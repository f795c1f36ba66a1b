package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	DeviceRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_registrations_total",
			Help: "Total number of device registration attempts.",
		},
		[]string{"service", "result"},
	)

	DeviceLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_logins_total",
			Help: "Total number of device login attempts.",
		},
		[]string{"service", "result"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_tokens_issued_total",
			Help: "Total number of tokens issued or refreshed.",
		},
		[]string{"service", "flow", "result"},
	)

	PipelineCacheEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_cache_events_total",
			Help: "Pipeline cache hits, misses and invalidations.",
		},
		[]string{"service", "event"},
	)

	PipelineBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_builds_total",
			Help: "Pipeline constructions by outcome.",
		},
		[]string{"service", "result"},
	)

	VoiceOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_operations_total",
			Help: "Voice facade operations by kind and outcome.",
		},
		[]string{"service", "op", "result"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	DeviceRegistrationsTotal = DeviceRegistrationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	DeviceLoginsTotal = DeviceLoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	TokensIssuedTotal = TokensIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	PipelineCacheEventsTotal = PipelineCacheEventsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	PipelineBuildsTotal = PipelineBuildsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	VoiceOperationsTotal = VoiceOperationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		DeviceRegistrationsTotal,
		DeviceLoginsTotal,
		TokensIssuedTotal,
		PipelineCacheEventsTotal,
		PipelineBuildsTotal,
		VoiceOperationsTotal,
	)
}
