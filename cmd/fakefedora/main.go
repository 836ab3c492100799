// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Fakefedora serves an in-memory imitation of a Fedora Commons
// repository over HTTP.  Nothing is persisted; everything is lost
// when the program exits.  This is useful for trying out fedoractl
// and for integration tests that need a server process.
package main

import (
	"flag"
	"net/http"
	"strings"
	"time"

	"github.com/diffeo/go-fedora/fakerepo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

func main() {
	httpBind := flag.String("http", ":8080",
		"[ip]:port for HTTP REST interface")
	base := flag.String("base", "/fedora", "URL path of the repository")
	username := flag.String("username", "", "require this user name")
	password := flag.String("password", "", "require this password")
	flag.Parse()

	repo := fakerepo.New()
	if *username != "" {
		repo.RequireAuth(*username, *password)
	}
	go observe(repo, 15*time.Second)

	r := mux.NewRouter()
	if prefix := strings.TrimRight(*base, "/"); prefix == "" {
		repo.PopulateRouter(r)
	} else {
		repo.PopulateRouter(r.PathPrefix(prefix).Subrouter())
	}
	r.Handle("/metrics", promhttp.Handler())

	n := negroni.New(negroni.NewRecovery(), negroni.NewLogger())
	n.UseHandler(r)

	logrus.WithFields(logrus.Fields{
		"http": *httpBind,
		"base": *base,
	}).Info("Serving fake repository")
	if err := http.ListenAndServe(*httpBind, n); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("HTTP server failed")
	}
}
