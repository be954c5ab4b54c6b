package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// resolutions counts completed effective-permission resolutions.
var resolutions = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "permission_resolutions_total",
		Help: "Number of effective permission resolutions computed.",
	},
)

func observeResolution() {
	resolutions.Inc()
}
