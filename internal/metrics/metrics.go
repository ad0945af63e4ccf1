package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventuraa"

// Registry is the Prometheus registry for all application metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels, value pinned to 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always 1, info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// SignupsTotal counts completed registrations by role.
var SignupsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of completed registrations",
	},
	[]string{"role"},
)

// SigninsTotal counts sign-in attempts by outcome (success|failure).
var SigninsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Total number of sign-in attempts",
	},
	[]string{"outcome"},
)

// TicketsReservedTotal counts tickets successfully reserved.
var TicketsReservedTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_reserved_total",
		Help:      "Total number of tickets reserved",
	},
)

// ReservationFailuresTotal counts failed reservations by reason.
var ReservationFailuresTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_failures_total",
		Help:      "Total number of failed ticket reservations",
	},
	[]string{"reason"},
)

// EventsReviewedTotal counts admin review decisions.
var EventsReviewedTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_reviewed_total",
		Help:      "Total number of event review decisions",
	},
	[]string{"decision"},
)

// Init registers runtime collectors and stamps the build info gauge.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
