// Package http serves statements over HTTP.
//
// This file implements utilities for parsing and validating request data:
// statement periods from query strings and JSON or form bodies.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"extracto/internal/core"
)

const maxBodyBytes = 64 << 10

// ParsePeriodParams reads the statement period from a query or form.
// "month=2024-01" selects a calendar month; "start" and "end" give explicit
// ISO bounds and must come together. With neither, the previous calendar
// month relative to now is used. Malformed values are errBadRequest; a
// start after end is core.ErrInvalidPeriod.
func ParsePeriodParams(values url.Values, now time.Time) (core.Period, error) {
	if m := strings.TrimSpace(values.Get("month")); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: month %q must be YYYY-MM", errBadRequest, m)
		}
		return core.MonthOf(core.DateOf(t)), nil
	}

	startStr := strings.TrimSpace(values.Get("start"))
	endStr := strings.TrimSpace(values.Get("end"))
	switch {
	case startStr == "" && endStr == "":
		return previousMonth(now), nil
	case startStr == "" || endStr == "":
		return core.Period{}, fmt.Errorf("%w: start and end go together", errBadRequest)
	}

	start, err := core.ParseDate(startStr)
	if err != nil {
		return core.Period{}, fmt.Errorf("%w: start: %v", errBadRequest, err)
	}
	end, err := core.ParseDate(endStr)
	if err != nil {
		return core.Period{}, fmt.Errorf("%w: end: %v", errBadRequest, err)
	}
	return core.NewPeriod(start, end)
}

func previousMonth(now time.Time) core.Period {
	first := core.MonthOf(core.DateOf(now)).Start
	return core.MonthOf(core.Date{Time: first.AddDate(0, 0, -1)})
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads at most maxBodyBytes once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: body larger than %d bytes", errBadRequest, maxBodyBytes)
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
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errBadRequest, err)
			return p.err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadRequest, p.err)
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetBool reads a flag; absent or unparsable values are false.
func (p *RequestBodyParser) GetBool(key string) bool {
	b, _ := strconv.ParseBool(p.Get(key))
	return b
}

// Values returns the parsed fields as url.Values.
func (p *RequestBodyParser) Values() url.Values {
	if p.jsonData == nil {
		return p.formData
	}
	out := url.Values{}
	for k, v := range p.jsonData {
		out.Set(k, sanitizeInput(stringValue(v)))
	}
	return out
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
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
