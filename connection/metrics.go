// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package connection

import "github.com/prometheus/client_golang/prometheus"

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fedora",
		Subsystem: "connection",
		Name:      "requests_total",
		Help:      "Repository requests attempted, by HTTP method and status code",
	},
	[]string{
		"method",
		"code",
	},
)

var retriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fedora",
		Subsystem: "connection",
		Name:      "retries_total",
		Help:      "Repository requests retried, by reason",
	},
	[]string{
		"reason",
	},
)

var reconnectsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "fedora",
		Subsystem: "connection",
		Name:      "reconnects_total",
		Help:      "Repository sessions torn down and reopened",
	},
)

func init() {
	prometheus.MustRegister(requestsTotal, retriesTotal, reconnectsTotal)
}
