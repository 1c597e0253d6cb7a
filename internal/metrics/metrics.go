package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Logins counts login attempts by outcome ("ok" or "failed").
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pointage_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// ClockIns counts accepted pointage records.
	ClockIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointage_clockins_total",
		Help: "Accepted clock-in records.",
	})

	// Exports counts CSV exports served.
	Exports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointage_exports_total",
		Help: "CSV exports served.",
	})
)
