// Package http serves the five budget views as HTML pages and as a JSON API,
// plus the create and delete endpoints of the ledger.
//
// This file turns query strings and request bodies into view state and
// transaction input.
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

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/view"
)

// maxBodyBytes bounds create request bodies.
const maxBodyBytes = 16 << 10

// ErrInvalidParam marks a malformed query parameter.
var ErrInvalidParam = errors.New("invalid parameter")

func paramError(name, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidParam, name, value)
}

// ParseViewState reads year, month, person, direction, filter month and page
// from q on top of the defaults for now. Years outside FirstYear..now are
// rejected; the reporting month is clamped into 1..12.
func ParseViewState(q url.Values, tab view.Tab, now time.Time) (view.State, error) {
	s := view.NewState(now).WithTab(tab)

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < view.FirstYear || y > now.Year() {
			return s, paramError("year", v)
		}
		s = s.WithYear(y)
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" && tab != view.TabTransactions {
		m, err := strconv.Atoi(v)
		if err != nil {
			return s, paramError("month", v)
		}
		s = s.WithMonth(m)
	}

	// On the ledger, month is a filter and "all" is allowed.
	fields := []string{"person", "direction"}
	if tab == view.TabTransactions {
		fields = append(fields, "month")
	}
	for _, field := range fields {
		v := q.Get(field)
		if strings.TrimSpace(v) == "" {
			continue
		}
		next, err := s.SetFilter(field, v)
		if err != nil {
			return s, fmt.Errorf("%w: %v", ErrInvalidParam, err)
		}
		s = next
	}

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p > ledger.MaxPage {
			return s, paramError("page", v)
		}
		s.Page = p
	}
	return s, nil
}

// ParseID reads a positive transaction id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, paramError("id", s)
	}
	return id, nil
}

// ParseConfirm accepts true, 1, yes, si and on.
func ParseConfirm(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "si", "sí", "on":
		return true
	}
	return false
}

// RequestBodyParser reads a body once and serves fields from either a JSON
// object or a form-encoded body.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body larger than %d bytes", maxBodyBytes)
	}
	return p
}

// Parse decodes the body as JSON when the content type says so or the body
// starts with '{', and as a form otherwise.
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
	if strings.HasPrefix(p.contentType, "application/json") || strings.HasPrefix(trimmed, "{") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode JSON body: %w", err)
			p.jsonData = nil
		}
		return p.err
	}
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a trimmed, control-character-free value, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if v, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(v))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// TransactionInput collects the create fields. "method" is accepted as a
// short form of "payment_method".
func (p *RequestBodyParser) TransactionInput() core.TransactionInput {
	method := p.Get("payment_method")
	if method == "" {
		method = p.Get("method")
	}
	return core.TransactionInput{
		Date:          p.Get("date"),
		Person:        p.Get("person"),
		Category:      p.Get("category"),
		PaymentMethod: method,
		Amount:        p.Get("amount"),
		Direction:     p.Get("direction"),
		Note:          p.Get("note"),
	}
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
