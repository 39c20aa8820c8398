package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meshd",
			Subsystem: "proxy",
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	stagedUploadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meshd",
			Subsystem: "proxy",
			Name:      "staged_uploads_total",
			Help:      "Inline images staged to a fetchable URL",
		},
	)
)

func init() {
	prometheus.MustRegister(predictionsTotal, stagedUploadsTotal)
}

// outcomeFor labels a finished request for the predictions counter.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "relayed"
	case IsValidation(err):
		return "validation"
	case IsConfig(err):
		return "config"
	case IsStaging(err):
		return "staging"
	}
	return "error"
}
