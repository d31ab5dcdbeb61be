// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON objects or form-encoded; handlers read fields by name
// without caring which.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"financetracker/internal/core"
)

// maxBodyBytes bounds request bodies read by RequestBodyParser.
const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// ParseMonthParams extracts year and month from query parameters, defaulting
// to today. Unparseable or out-of-range values fall back to the default.
func ParseMonthParams(query url.Values, today core.Date) MonthParams {
	params := MonthParams{Year: today.Year(), Month: today.Month()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1 && y <= 9999 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = time.Month(m)
		}
	}
	return params
}

// ParseTransactionQuery reads the list filters. Unknown types, non-numeric
// categories and bad page numbers are ignored.
func ParseTransactionQuery(query url.Values) (typ core.TransactionType, categoryID int64, page int) {
	if v := strings.TrimSpace(query.Get("type")); v != "" {
		if t, err := core.ParseTransactionType(v); err == nil {
			typ = t
		}
	}
	if v := strings.TrimSpace(query.Get("category")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			categoryID = id
		}
	}
	page = 1
	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	return typ, categoryID, page
}

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse decodes the body as JSON when it looks like an object, otherwise as a form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = errMalformedBody
			return p.err
		}
		return nil
	}
	if trimmed[0] == '[' {
		p.err = errMalformedBody
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = errMalformedBody
	}
	return p.err
}

// Get returns a trimmed, sanitized string value from the parsed data.
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

// sanitizeInput removes control characters except tab and newlines, and trims whitespace.
// Raw returns the value exactly as submitted. Secrets go through Raw so that
// surrounding whitespace and control characters stay part of the value.
func (p *RequestBodyParser) Raw(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stringValue(val)
		}
		return ""
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

func requiredField(field string) error {
	return &core.ValidationError{Field: field, Message: "This field is required."}
}

func parseID(field, value string) (int64, error) {
	if value == "" {
		return 0, requiredField(field)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: field,
			Message: "Select a valid choice. That choice is not one of the available choices.", Err: core.ErrMissingCategory}
	}
	return id, nil
}

func parseMoney(field, value string) (core.Money, error) {
	if value == "" {
		return core.Money{}, requiredField(field)
	}
	m, err := core.ParseAmount(value)
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: field,
			Message: "Enter an amount between 0.01 and 99999999.99 with at most 2 decimal places.", Err: err}
	}
	return m, nil
}

// ParseTransaction builds a transaction from a create or edit body.
func ParseTransaction(p *RequestBodyParser) (core.Transaction, error) {
	var tx core.Transaction

	typ := p.Get("type")
	if typ == "" {
		return tx, requiredField("type")
	}
	t, err := core.ParseTransactionType(typ)
	if err != nil {
		return tx, err
	}
	tx.Type = t

	if tx.Amount, err = parseMoney("amount", p.Get("amount")); err != nil {
		return tx, err
	}

	date := p.Get("date")
	if date == "" {
		return tx, requiredField("date")
	}
	if tx.Date, err = core.ParseDate(date); err != nil {
		return tx, err
	}

	if tx.CategoryID, err = parseID("category", p.Get("category")); err != nil {
		return tx, err
	}
	tx.Description = p.Get("description")
	return tx, nil
}

// ParseBudget builds a budget from a create body. A missing period means Monthly.
func ParseBudget(p *RequestBodyParser) (core.Budget, error) {
	var (
		b   core.Budget
		err error
	)
	if b.CategoryID, err = parseID("category", p.Get("category")); err != nil {
		return b, err
	}
	if b.Limit, err = parseMoney("limit", p.Get("limit")); err != nil {
		return b, err
	}
	if b.Period, err = core.ParseBudgetPeriod(p.Get("period")); err != nil {
		return b, err
	}
	return b, nil
}

// ParseCategory builds a category from a create body.
func ParseCategory(p *RequestBodyParser) core.Category {
	return core.Category{Name: p.Get("name"), Description: p.Get("description")}
}
