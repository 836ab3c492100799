// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/diffeo/go-fedora/client"
	"github.com/diffeo/go-fedora/connection"
	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/object"
	"github.com/diffeo/go-fedora/wadl"
	"github.com/ugorji/go/codec"
	"github.com/urfave/cli"
)

var commands = []cli.Command{
	{
		Name:   "methods",
		Usage:  "list the API methods the server describes",
		Action: listMethods,
	},
	{
		Name:  "nextpid",
		Usage: "reserve new object identifiers",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "namespace", Usage: "PID namespace"},
			cli.IntFlag{Name: "count", Usage: "number of PIDs", Value: 1},
		},
		Action: nextPID,
	},
	{
		Name:      "create",
		Usage:     "create an empty object",
		ArgsUsage: "pid",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "label", Usage: "object label"},
			cli.StringFlag{Name: "state", Usage: "object state, A, I, or D", Value: "A"},
		},
		Action: createObject,
	},
	{
		Name:      "profile",
		Usage:     "show an object's properties",
		ArgsUsage: "pid",
		Action:    showProfile,
	},
	{
		Name:      "datastreams",
		Usage:     "list an object's datastreams",
		ArgsUsage: "pid",
		Action:    listDatastreams,
	},
	{
		Name:      "ds-profile",
		Usage:     "show a datastream's properties",
		ArgsUsage: "pid dsid",
		Action:    showDatastreamProfile,
	},
	{
		Name:      "cat",
		Usage:     "write a datastream's content to standard output",
		ArgsUsage: "pid dsid",
		Action:    catDatastream,
	},
	{
		Name:      "call",
		Usage:     "run a dissemination method and write its output",
		ArgsUsage: "pid method [name=value...]",
		Action:    callMethod,
	},
	{
		Name:      "relations",
		Usage:     "show an object's RELS-EXT relations",
		ArgsUsage: "pid",
		Action:    showRelations,
	},
	{
		Name:      "search",
		Usage:     "search for objects",
		ArgsUsage: "query",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "terms", Usage: "treat the query as search terms"},
			cli.StringSliceFlag{Name: "field", Usage: "field to return (repeatable)"},
			cli.IntFlag{Name: "max-results", Usage: "results fetched per request", Value: 10},
		},
		Action: search,
	},
	{
		Name:      "triples",
		Usage:     "query the resource index",
		ArgsUsage: "query",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "lang", Usage: "query language", Value: "sparql"},
			cli.IntFlag{Name: "limit", Usage: "maximum number of results", Value: 100},
		},
		Action: triples,
	},
	{
		Name:      "purge",
		Usage:     "delete an object",
		ArgsUsage: "pid",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "message", Usage: "audit log message"},
		},
		Action: purge,
	},
}

// withClient connects to the repository, runs f, and closes the
// connection.
func withClient(c *cli.Context, f func(*client.Client) error) error {
	config, err := connectionConfig(c)
	if err != nil {
		return err
	}
	conn, err := connection.New(config)
	if err != nil {
		return err
	}
	defer conn.Close()
	fc, err := client.New(conn)
	if err != nil {
		return err
	}
	return f(fc)
}

// args returns the command's positional arguments, or an error if
// there are fewer than n.
func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() < n {
		return nil, fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)
	}
	return c.Args(), nil
}

func printJSON(w io.Writer, v interface{}) error {
	json := &codec.JsonHandle{}
	encoder := codec.NewEncoder(w, json)
	err := encoder.Encode(v)
	if err == nil {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

type methodInfo struct {
	ID     string   `codec:"id"`
	Verb   string   `codec:"verb"`
	Path   string   `codec:"path"`
	Params []string `codec:"params"`
}

func listMethods(c *cli.Context) error {
	return withClient(c, func(fc *client.Client) error {
		var result []methodInfo
		for _, id := range fc.API().Methods() {
			m, err := fc.API().Method(id)
			if err != nil {
				return err
			}
			info := methodInfo{ID: m.ID, Verb: m.Name, Path: m.Path, Params: []string{}}
			for name, param := range m.Params {
				info.Params = append(info.Params, name+":"+param.Type.String())
			}
			sort.Strings(info.Params)
			result = append(result, info)
		}
		return printJSON(os.Stdout, result)
	})
}

func nextPID(c *cli.Context) error {
	return withClient(c, func(fc *client.Client) error {
		pids, err := fc.GetNextPID(c.String("namespace"), c.Int("count"))
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, pids)
	})
}

func createObject(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	return withClient(c, func(fc *client.Client) error {
		obj, err := object.Create(fc, a[0], c.String("label"), c.String("state"))
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, map[string]interface{}{
			"pid":     obj.PID,
			"profile": obj.Profile,
		})
	})
}

func showProfile(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	return withClient(c, func(fc *client.Client) error {
		profile, err := fc.GetObjectProfile(a[0])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, profile)
	})
}

func listDatastreams(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	return withClient(c, func(fc *client.Client) error {
		obj, err := object.Open(fc, a[0])
		if err != nil {
			return err
		}
		result := make(map[string]fedora.DatastreamProfile)
		for _, dsid := range obj.Datastreams() {
			ds, err := obj.Datastream(dsid)
			if err != nil {
				return err
			}
			result[dsid] = ds.Profile
		}
		return printJSON(os.Stdout, result)
	})
}

func showDatastreamProfile(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	return withClient(c, func(fc *client.Client) error {
		profile, err := fc.GetDatastreamProfile(a[0], a[1])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, profile)
	})
}

func catDatastream(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	return withClient(c, func(fc *client.Client) error {
		resp, err := fc.GetDatastream(a[0], a[1])
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, err = io.Copy(os.Stdout, resp.Body)
		return err
	})
}

// parseParams reads name=value arguments.
func parseParams(words []string) (url.Values, error) {
	params := url.Values{}
	for _, word := range words {
		parts := strings.SplitN(word, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected name=value, got %q", word)
		}
		params.Add(parts[0], parts[1])
	}
	return params, nil
}

func callMethod(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	params, err := parseParams(a[2:])
	if err != nil {
		return err
	}
	return withClient(c, func(fc *client.Client) error {
		obj, err := object.Open(fc, a[0])
		if err != nil {
			return err
		}
		resp, err := obj.Call(a[1], params)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, err = io.Copy(os.Stdout, resp.Body)
		return err
	})
}

func showRelations(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	return withClient(c, func(fc *client.Client) error {
		obj, err := object.Open(fc, a[0])
		if err != nil {
			return err
		}
		if !obj.HasDatastream("RELS-EXT") {
			return printJSON(os.Stdout, map[string]interface{}{})
		}
		rels, err := obj.Relations()
		if err != nil {
			return err
		}
		values, err := rels.Values()
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, values)
	})
}

func search(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	fields := c.StringSlice("field")
	if len(fields) == 0 {
		fields = []string{"pid", "label"}
	}
	opts := client.SearchOptions{
		Terms:      c.Bool("terms"),
		MaxResults: c.Int("max-results"),
	}
	return withClient(c, func(fc *client.Client) error {
		it := fc.SearchObjects(a[0], fields, opts)
		for it.Next() {
			if err := printJSON(os.Stdout, it.Record()); err != nil {
				return err
			}
		}
		return it.Err()
	})
}

func triples(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	opts := client.TripleOptions{
		Lang:  c.String("lang"),
		Limit: c.Int("limit"),
	}
	return withClient(c, func(fc *client.Client) error {
		bindings, err := fc.SearchTriples(a[0], opts)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, bindings)
	})
}

func purge(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	var params wadl.Params
	if message := c.String("message"); message != "" {
		params = wadl.Params{"logMessage": message}
	}
	return withClient(c, func(fc *client.Client) error {
		return fc.DeleteObject(a[0], params)
	})
}
