// Package http provides the JSON API server and its handlers.
//
// This file implements request body parsing and the boundary validation of
// new records.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookkeeping/internal/core"
)

// errMalformedBody marks bodies that could not be decoded at all, as opposed
// to well-formed bodies carrying invalid values.
var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser handles both JSON and form-encoded bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(r.Body)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
			return p.err
		}
		return nil
	}

	form, err := url.ParseQuery(trimmed)
	if err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns a trimmed string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseDraft turns a request body into a validated, normalized draft. A
// missing date defaults to today.
func ParseDraft(p *RequestBodyParser, today time.Time) (core.Draft, error) {
	if err := p.Parse(); err != nil {
		return core.Draft{}, err
	}

	recordType, err := core.ParseRecordType(p.Get("type"))
	if err != nil {
		return core.Draft{}, err
	}
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.Draft{}, err
	}
	date := p.Get("date")
	if date == "" {
		date = core.FormatDate(today)
	}

	d := core.Draft{
		Type:     recordType,
		Amount:   amount,
		Category: p.Get("category"),
		Note:     p.Get("note"),
		Date:     date,
	}
	if err := d.Validate(); err != nil {
		return core.Draft{}, err
	}
	return d.Normalize(), nil
}

// ParseMonth extracts the month key from a body field or query parameter.
func ParseMonth(p *RequestBodyParser, r *http.Request) (string, error) {
	if err := p.Parse(); err != nil {
		return "", err
	}
	month := p.Get("month")
	if month == "" {
		month = strings.TrimSpace(r.URL.Query().Get("month"))
	}
	if !core.ValidMonthKey(month) {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidMonth, month)
	}
	return month, nil
}
