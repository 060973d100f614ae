package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricBookingRejections = "business.booking_rejections"
	MetricTicketsIssued     = "business.tickets_issued"
	MetricHoldsExpired      = "business.holds_expired"
)
