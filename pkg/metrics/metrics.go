package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge
	RateLimited     prometheus.Counter

	PatientsCreatedTotal prometheus.Counter
	AppointmentsTotal    *prometheus.CounterVec
	PrescriptionsIssued  prometheus.Counter
	StockRejections      prometheus.Counter
	InvoicesGenerated    prometheus.Counter
	PaymentsRecorded     *prometheus.CounterVec
	InvoicesPaid         prometheus.Counter

	DBTransactionDuration *prometheus.HistogramVec
	DBConnections         prometheus.Gauge

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter

	EventsPublished *prometheus.CounterVec
}

// NewCollector registers the collectors with the default Prometheus registry.
func NewCollector(serviceName string) *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer, serviceName)
}

// NewCollectorWith registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so collectors do not clash across test cases.
func NewCollectorWith(reg prometheus.Registerer, serviceName string) *Collector {
	factory := promauto.With(reg)
	ns := strings.ReplaceAll(serviceName, "-", "_")

	return &Collector{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}),

		PatientsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "patients_created_total",
			Help:      "Total number of patient records created.",
		}),

		AppointmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "appointments_total",
			Help:      "Appointment workflow outcomes: scheduled, conflict, completed, cancelled.",
		}, []string{"outcome"}),

		PrescriptionsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "pharmacy",
			Name:      "prescriptions_issued_total",
			Help:      "Total prescriptions issued.",
		}),

		StockRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "pharmacy",
			Name:      "stock_rejections_total",
			Help:      "Prescriptions rejected for insufficient stock.",
		}),

		InvoicesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "billing",
			Name:      "invoices_generated_total",
			Help:      "Total invoices generated.",
		}),

		PaymentsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "billing",
			Name:      "payments_recorded_total",
			Help:      "Payments recorded by method.",
		}, []string{"method"}),

		InvoicesPaid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "billing",
			Name:      "invoices_paid_total",
			Help:      "Invoices that reached fully paid.",
		}),

		DBTransactionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "transaction_duration_seconds",
			Help:      "Store transaction latency by outcome (commit or rollback).",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"outcome"}),

		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "open_connections",
			Help:      "Current number of open database connections.",
		}),

		AuditEntriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events handed to the publisher, by type and result.",
		}, []string{"type", "result"}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
