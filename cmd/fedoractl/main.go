// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Fedoractl runs single operations against a Fedora Commons
// repository and prints the results as JSON.  Usage:
//
//     fedoractl --url http://localhost:8080/fedora --username fedoraAdmin \
//         --password fedoraAdmin profile demo:1
//
// Connection settings may also come from a YAML file named with
// --config; flags given on the command line take precedence.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "fedoractl"
	app.Usage = "Run operations against a Fedora Commons repository"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "url",
			Usage:  "base URL of the repository",
			Value:  "http://localhost:8080/fedora",
			EnvVar: "FEDORA_URL",
		},
		cli.StringFlag{
			Name:   "username",
			Usage:  "user name for HTTP basic authentication",
			EnvVar: "FEDORA_USERNAME",
		},
		cli.StringFlag{
			Name:   "password",
			Usage:  "password for HTTP basic authentication",
			EnvVar: "FEDORA_PASSWORD",
		},
		cli.BoolFlag{
			Name:  "persistent",
			Usage: "keep the HTTP session open between requests",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML file with connection settings",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "log every request",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("debug") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	}
	app.Commands = commands

	if err := app.Run(os.Args); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Command failed")
	}
}
