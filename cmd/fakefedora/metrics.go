// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"time"

	"github.com/diffeo/go-fedora/fakerepo"
	"github.com/prometheus/client_golang/prometheus"
)

var storedObjects = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "fedora",
		Subsystem: "fakerepo",
		Name:      "objects",
		Help:      "Number of objects in the fake repository",
	},
)

func init() {
	prometheus.MustRegister(storedObjects)
}

func observe(repo *fakerepo.Repository, interval time.Duration) {
	for {
		storedObjects.Set(float64(repo.ObjectCount()))
		time.Sleep(interval)
	}
}
