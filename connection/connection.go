// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package connection owns the HTTP session to a Fedora repository
// server.  It adds credentials to every request, retries requests
// that fail for transient reasons, and turns non-success responses
// into *fedora.ErrorHTTP errors.
//
// A Connection is not safe for concurrent use.  Programs that talk
// to the repository from several goroutines should create one
// Connection per goroutine.
package connection

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-fedora/fedora"
	"github.com/sirupsen/logrus"
)

// State describes what a Connection is doing.
type State int

const (
	// Idle connections have an open (or openable) session and no
	// request in flight.
	Idle State = iota

	// Requesting connections are sending a request or waiting
	// for its response.
	Requesting

	// Reconnecting connections are tearing down and reopening
	// their session after a failure.
	Reconnecting

	// Closed connections have no open session.  The next request
	// will open a new one.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Reconnecting:
		return "reconnecting"
	case Closed:
		return "closed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Config describes how to reach a repository server.
type Config struct {
	// URL is the base URL of the server, for instance
	// "http://localhost:8080/fedora".  If it has no scheme,
	// "http" is assumed.  This field is required.
	URL string

	// Username and Password, if both are set, are sent as HTTP
	// basic authentication on every request.
	Username string
	Password string

	// Persistent keeps the HTTP session open between requests.
	// If false, every request asks the server to close the
	// connection and the session is closed after the request.
	Persistent bool

	// MaxAttempts is the total number of times a request will be
	// tried.  If unset, defaults to 3.
	MaxAttempts int

	// ConflictDelay is how long to wait before retrying a request
	// that failed with HTTP 409 Conflict.  If unset, defaults to
	// 5 seconds.
	ConflictDelay time.Duration

	// Transport performs the actual HTTP requests.  If unset, a
	// private http.Transport is created for this connection.
	Transport http.RoundTripper

	// Clock is the time source used for retry delays.  Only test
	// code should need to set this.
	Clock clock.Clock

	// Logger receives diagnostic messages.  If unset, uses the
	// logrus standard logger.
	Logger logrus.FieldLogger
}

// setDefaults sets default values for any Config fields that are
// uninitialized.
func (cfg *Config) setDefaults() {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ConflictDelay == time.Duration(0) {
		cfg.ConflictDelay = time.Duration(5) * time.Second
	}
	if cfg.Transport == nil {
		cfg.Transport = &http.Transport{Proxy: http.ProxyFromEnvironment}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
}

// Connection is a session with a single repository server.
type Connection struct {
	config      Config
	base        *url.URL
	client      *http.Client
	formHeaders http.Header
	reconnects  int
	state       State
}

// idleCloser is implemented by http.Transport, and by anything else
// that holds pooled connections.
type idleCloser interface {
	CloseIdleConnections()
}

// New creates a new connection.  This does not contact the server.
func New(config Config) (*Connection, error) {
	if config.URL == "" {
		return nil, errors.New("no repository URL given")
	}
	raw := config.URL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if base.Host == "" {
		return nil, fmt.Errorf("repository URL %q has no host", config.URL)
	}
	config.setDefaults()

	c := &Connection{
		config:      config,
		base:        base,
		client:      &http.Client{Transport: config.Transport},
		formHeaders: make(http.Header),
		state:       Idle,
	}
	if !config.Persistent {
		c.formHeaders.Set("Connection", "close")
	}
	if config.Username != "" && config.Password != "" {
		token := base64.StdEncoding.EncodeToString([]byte(config.Username + ":" + config.Password))
		c.formHeaders.Set("Authorization", "Basic "+token)
	}
	return c, nil
}

// URL returns the base URL of the server.
func (c *Connection) URL() *url.URL {
	u := *c.base
	return &u
}

// DefaultHeaders returns a new copy of the headers that should be
// sent with every request.
func (c *Connection) DefaultHeaders() http.Header {
	return cloneHeader(c.formHeaders)
}

// Reconnects returns the number of times this connection has torn
// down and reopened its session.
func (c *Connection) Reconnects() int {
	return c.reconnects
}

// State returns the current connection state.
func (c *Connection) State() State {
	return c.state
}

// Close closes the underlying session.  The connection can still be
// used; the next request opens a new session.
func (c *Connection) Close() {
	c.closeSession()
	c.state = Closed
}

// Open sends a request to the server and returns its response.  path
// is taken relative to the connection's base URL, and may include a
// query string.  If method is empty, GET is used.  The caller must
// close the response body.  The connection's default headers are
// sent unless header overrides them.
//
// Transport-level failures are retried immediately, after reopening
// the session.  A 409 Conflict response is retried after a delay.
// If all attempts fail at the transport level, returns
// fedora.ErrConnection; any non-success response that is not retried
// is returned as *fedora.ErrorHTTP.
func (c *Connection) Open(path string, body []byte, header http.Header, method string) (*http.Response, error) {
	if method == "" {
		method = http.MethodGet
	}
	header = mergeHeaders(c.formHeaders, header)
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	if needsIngestForm(method, target, body) {
		c.config.Logger.Debug("Body empty for datastream ingest, sending placeholder form")
		var contentType string
		body, contentType, err = ingestForm(target)
		if err != nil {
			return nil, err
		}
		header.Set("Content-Type", contentType)
	}
	header.Set("Content-Length", strconv.Itoa(len(body)))

	if !c.config.Persistent {
		defer func() {
			c.closeSession()
			c.state = Closed
		}()
	}

	log := c.config.Logger.WithFields(logrus.Fields{
		"method": method,
		"url":    target.String(),
	})
	attempts := c.config.MaxAttempts
	for {
		c.state = Requesting
		log.Debug("Trying request")
		resp, err := c.do(method, target, body, header)
		if err == nil {
			requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
			c.state = Idle
			return resp, nil
		}
		attempts--

		var httpErr *fedora.ErrorHTTP
		if errors.As(err, &httpErr) {
			requestsTotal.WithLabelValues(method, strconv.Itoa(httpErr.Code)).Inc()
			if attempts <= 0 || !httpErr.IsConflict() {
				log.WithFields(logrus.Fields{
					"code": httpErr.Code,
				}).Debug("Request failed")
				c.state = Idle
				return nil, err
			}
			log.WithFields(logrus.Fields{
				"code":  httpErr.Code,
				"delay": c.config.ConflictDelay,
			}).Warn("Conflict, retrying")
			retriesTotal.WithLabelValues("conflict").Inc()
			c.reconnect()
			c.config.Clock.Sleep(c.config.ConflictDelay)
			continue
		}

		requestsTotal.WithLabelValues(method, "error").Inc()
		if attempts <= 0 {
			log.WithFields(logrus.Fields{
				"err": err,
			}).Warn("Request failed, giving up")
			c.state = Idle
			return nil, fedora.ErrConnection{Err: err}
		}
		log.WithFields(logrus.Fields{
			"err": err,
		}).Warn("Transport error, retrying")
		retriesTotal.WithLabelValues("transport").Inc()
		c.reconnect()
	}
}

// resolve normalizes a request path against the base path.
func (c *Connection) resolve(path string) (*url.URL, error) {
	path = strings.TrimLeft(path, "/")
	return c.base.Parse(strings.TrimRight(c.base.Path, "/") + "/" + path)
}

// do performs a single HTTP round trip.  It returns either a
// transport error or *fedora.ErrorHTTP.
func (c *Connection) do(method string, target *url.URL, body []byte, header http.Header) (*http.Response, error) {
	req, err := http.NewRequest(method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header = cloneHeader(header)
	req.Close = !c.config.Persistent

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if err = checkHTTPStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// reconnect closes the session and opens a new one.  Reopening is
// lazy: the transport dials again on the next request.
func (c *Connection) reconnect() {
	c.state = Reconnecting
	c.reconnects++
	reconnectsTotal.Inc()
	c.closeSession()
	c.state = Requesting
}

func (c *Connection) closeSession() {
	if closer, ok := c.config.Transport.(idleCloser); ok {
		closer.CloseIdleConnections()
	}
}

// checkHTTPStatus examines an HTTP response and returns an error if
// it is not successful.  On failure the body is consumed and closed.
func checkHTTPStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body []byte
	if resp.Body != nil {
		// The body is diagnostic only; a read failure here
		// should not hide the status code.
		body, _ = ioutil.ReadAll(resp.Body)
		_ = resp.Body.Close()
	}
	reason := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return &fedora.ErrorHTTP{
		Code:   resp.StatusCode,
		Reason: reason,
		Body:   string(body),
	}
}

// mergeHeaders returns a copy of base with every header named in
// override replaced.
func mergeHeaders(base, override http.Header) http.Header {
	result := cloneHeader(base)
	for k, v := range override {
		result[k] = append([]string(nil), v...)
	}
	return result
}

func cloneHeader(h http.Header) http.Header {
	result := make(http.Header, len(h))
	for k, v := range h {
		result[k] = append([]string(nil), v...)
	}
	return result
}
