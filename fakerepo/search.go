// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package fakerepo

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/xmlmap"
	uuid "github.com/satori/go.uuid"
)

// errNoToken is returned when a search continuation token is unknown.
var errNoToken = errors.New("unknown or expired session token")

// SearchFields lists the fields that can be searched and returned.
var SearchFields = []string{
	"pid", "label", "state", "ownerId", "cDate", "mDate",
	"title", "creator", "subject", "description", "publisher",
	"contributor", "date", "type", "format", "identifier",
	"source", "language", "relation", "coverage", "rights",
}

// SearchPage is one page of search results.
type SearchPage struct {
	// Token continues the search, or is empty on the last page.
	Token string

	// Cursor is the index of the first result on this page.
	Cursor int

	// Total is the number of results in the whole search.
	Total int

	// Results holds the requested fields of each matching
	// object.  Field order follows the request.
	Results []SearchResult
}

// SearchResult holds the returned fields of one object, in order.
type SearchResult []SearchField

// SearchField is one value of one field.
type SearchField struct {
	Name  string
	Value string
}

// condition is one term of a field query, such as "pid~demo:*".
type condition struct {
	Field string
	Op    string
	Value string
}

var conditionRE = regexp.MustCompile(`^([A-Za-z]+)(~|=|<=|>=|<|>)(.*)$`)

// parseQuery splits a field query into its conditions.  Values may be
// single-quoted to include spaces.
func parseQuery(query string) ([]condition, error) {
	var result []condition
	for _, word := range splitQuery(query) {
		m := conditionRE.FindStringSubmatch(word)
		if m == nil {
			return nil, errBadRequest{Err: fmt.Errorf("malformed query condition %q", word)}
		}
		value := m[3]
		if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
			value = value[1 : len(value)-1]
		}
		result = append(result, condition{Field: m[1], Op: m[2], Value: value})
	}
	return result, nil
}

func splitQuery(query string) []string {
	var words []string
	var word strings.Builder
	quoted := false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			word.WriteRune(r)
		case r == ' ' && !quoted:
			if word.Len() > 0 {
				words = append(words, word.String())
				word.Reset()
			}
		default:
			word.WriteRune(r)
		}
	}
	if word.Len() > 0 {
		words = append(words, word.String())
	}
	return words
}

// globRE converts a search pattern using * and ? into a
// case-insensitive regular expression.
func globRE(pattern string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.Replace(quoted, `\*`, ".*", -1)
	quoted = strings.Replace(quoted, `\?`, ".", -1)
	return regexp.MustCompile("(?i)^" + quoted + "$")
}

func (c condition) match(fields map[string][]string) bool {
	var re *regexp.Regexp
	if c.Op == "~" {
		re = globRE(c.Value)
	}
	for _, value := range fields[c.Field] {
		var ok bool
		switch c.Op {
		case "=":
			ok = value == c.Value
		case "~":
			ok = re.MatchString(value)
		case "<":
			ok = value < c.Value
		case ">":
			ok = value > c.Value
		case "<=":
			ok = value <= c.Value
		case ">=":
			ok = value >= c.Value
		}
		if ok {
			return true
		}
	}
	return false
}

// fieldValues returns the searchable fields of an object.  The lock
// must be held.
func fieldValues(obj *object) map[string][]string {
	fields := map[string][]string{
		"pid":     {obj.PID},
		"label":   {obj.Profile.Label},
		"state":   {obj.Profile.State},
		"ownerId": {obj.Profile.OwnerID},
		"cDate":   {obj.Profile.CreatedDate},
		"mDate":   {obj.Profile.LastModifiedDate},
	}
	if ds, ok := obj.Datastreams["DC"]; ok {
		if dc, err := xmlmap.ParseDC(ds.Content); err == nil {
			for name, values := range dc {
				fields[name] = values
			}
		}
	}
	return fields
}

// Search runs a field query or a terms search and returns the first
// page of results.  Only the fields named in fields are returned.
func (r *Repository) Search(query, terms string, fields []string, maxResults int) (SearchPage, error) {
	conditions, err := parseQuery(query)
	if err != nil {
		return SearchPage{}, err
	}
	var termsRE *regexp.Regexp
	if terms != "" {
		termsRE = globRE("*" + terms + "*")
	}
	if maxResults <= 0 {
		return SearchPage{}, errBadRequest{Err: fmt.Errorf("invalid maxResults %d", maxResults)}
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	var pids []string
	for pid, obj := range r.objects {
		values := fieldValues(obj)
		if termsRE != nil && !matchAny(termsRE, values) {
			continue
		}
		matched := true
		for _, c := range conditions {
			if !c.match(values) {
				matched = false
				break
			}
		}
		if matched {
			pids = append(pids, pid)
		}
	}
	sort.Strings(pids)
	session := &searchSession{PIDs: pids, Fields: fields}
	return r.page(uuid.NewV4().String(), session, 0, maxResults), nil
}

// ResumeSearch returns the next page of a search.
func (r *Repository) ResumeSearch(token string, maxResults int) (SearchPage, error) {
	if maxResults <= 0 {
		return SearchPage{}, errBadRequest{Err: fmt.Errorf("invalid maxResults %d", maxResults)}
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return SearchPage{}, errBadRequest{Err: errNoToken}
	}
	delete(r.sessions, token)
	return r.page(token, session, session.Cursor, maxResults), nil
}

func matchAny(re *regexp.Regexp, fields map[string][]string) bool {
	for _, values := range fields {
		for _, value := range values {
			if re.MatchString(value) {
				return true
			}
		}
	}
	return false
}

// page builds one page of results starting at cursor, and saves the
// session under token if more results remain.  The lock must be
// held.
func (r *Repository) page(token string, session *searchSession, cursor, maxResults int) SearchPage {
	result := SearchPage{Cursor: cursor, Total: len(session.PIDs)}
	end := cursor + maxResults
	if end >= len(session.PIDs) {
		end = len(session.PIDs)
	} else {
		session.Cursor = end
		r.sessions[token] = session
		result.Token = token
	}
	for _, pid := range session.PIDs[cursor:end] {
		obj, ok := r.objects[pid]
		if !ok {
			// purged since the search started
			continue
		}
		values := fieldValues(obj)
		var record SearchResult
		for _, name := range session.Fields {
			for _, value := range values[name] {
				if value != "" {
					record = append(record, SearchField{Name: name, Value: value})
				}
			}
		}
		result.Results = append(result.Results, record)
	}
	return result
}

// Relations returns every RELS-EXT relation in the repository as
// (subject, predicate, object) bindings, sorted by subject and then
// predicate.
func (r *Repository) Relations() []fedora.Binding {
	r.lock.Lock()
	defer r.lock.Unlock()
	pids := make([]string, 0, len(r.objects))
	for pid := range r.objects {
		pids = append(pids, pid)
	}
	sort.Strings(pids)
	var result []fedora.Binding
	for _, pid := range pids {
		ds, ok := r.objects[pid].Datastreams["RELS-EXT"]
		if !ok {
			continue
		}
		rels, err := xmlmap.ParseRDF(ds.Content)
		if err != nil {
			continue
		}
		for _, predicate := range rels.Keys() {
			for _, value := range rels[predicate] {
				result = append(result, fedora.Binding{
					"s": fedora.URI("info:fedora/" + pid),
					"p": fedora.URI(predicate),
					"o": value,
				})
			}
		}
	}
	return result
}

// parseLimit reads an optional positive integer parameter.
func parseLimit(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errBadRequest{Err: err}
	}
	return n, nil
}
