// Package supabase talks to the hosted table API (PostgREST) that keeps the
// transactions and credit_cards tables.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
)

type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

var _ ledger.Store = (*Client)(nil)

// row mirrors a transactions record.
type row struct {
	ID          int64           `json:"id,omitempty"`
	Fecha       string          `json:"fecha"`
	Persona     string          `json:"persona"`
	Categoria   string          `json:"categoria"`
	FormaPago   string          `json:"forma_pago"`
	Importe     decimal.Decimal `json:"importe"`
	Tipo        string          `json:"tipo"`
	Mes         int             `json:"mes"`
	Anio        int             `json:"anio"`
	Observacion string          `json:"observacion,omitempty"`
}

type cardRow struct {
	ID      int64  `json:"id"`
	Nombre  string `json:"nombre"`
	Titular string `json:"titular"`
}

// New returns a client for the project at baseURL. hc may be nil.
func New(baseURL, key string, hc *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing SUPABASE_URL")
	}
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("missing SUPABASE_KEY")
	}
	if hc == nil {
		hc = newHTTPClientWithPooling()
	}
	return &Client{baseURL: baseURL, key: key, http: hc}, nil
}

// newHTTPClientWithPooling creates an HTTP client with connection pooling
// and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 30 * time.Second}
}

func (c *Client) ListTransactions(ctx context.Context, q ledger.Query) ([]core.Transaction, error) {
	v := url.Values{}
	v.Set("select", "*")
	v.Set("anio", "eq."+strconv.Itoa(q.Year))
	if q.Month != 0 {
		v.Set("mes", "eq."+strconv.Itoa(q.Month))
	}
	if q.Person != "" {
		v.Set("persona", "eq."+string(q.Person))
	}
	if q.Direction != "" {
		v.Set("tipo", "eq."+string(q.Direction))
	}
	v.Set("order", "fecha.desc,id.desc")

	hdr := http.Header{}
	if q.Limit > 0 {
		hdr.Set("Range-Unit", "items")
		hdr.Set("Range", fmt.Sprintf("%d-%d", q.Offset, q.Offset+q.Limit-1))
	} else if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}

	var rows []row
	if err := c.do(ctx, http.MethodGet, "transactions", v, hdr, nil, &rows); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.transaction()
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	body, err := json.Marshal(fromTransaction(t))
	if err != nil {
		return 0, fmt.Errorf("encode transaction: %w", err)
	}
	hdr := http.Header{}
	hdr.Set("Prefer", "return=representation")

	var created []row
	if err := c.do(ctx, http.MethodPost, "transactions", nil, hdr, body, &created); err != nil {
		return 0, err
	}
	if len(created) == 0 {
		return 0, errors.New("insert returned no row")
	}
	return created[0].ID, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	v := url.Values{}
	v.Set("id", "eq."+strconv.FormatInt(id, 10))
	hdr := http.Header{}
	hdr.Set("Prefer", "return=representation")

	var deleted []row
	if err := c.do(ctx, http.MethodDelete, "transactions", v, hdr, nil, &deleted); err != nil {
		return err
	}
	if len(deleted) == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (c *Client) ListCards(ctx context.Context) ([]core.Card, error) {
	v := url.Values{}
	v.Set("select", "*")
	v.Set("order", "id.asc")
	var rows []cardRow
	if err := c.do(ctx, http.MethodGet, "credit_cards", v, nil, nil, &rows); err != nil {
		return nil, err
	}
	out := make([]core.Card, len(rows))
	for i, r := range rows {
		out[i] = core.Card{ID: r.ID, Name: r.Nombre, Holder: core.Person(r.Titular)}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, table string, q url.Values, hdr http.Header, body []byte, out any) error {
	u := c.baseURL + "/rest/v1/" + table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", table, err)
	}
	// 416 means the requested range starts past the last row.
	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		return json.Unmarshal([]byte("[]"), out)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d: %s", method, table, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

func fromTransaction(t core.Transaction) row {
	return row{
		Fecha:       t.Date.String(),
		Persona:     string(t.Person),
		Categoria:   t.Category,
		FormaPago:   string(t.PaymentMethod),
		Importe:     t.Amount.Decimal(),
		Tipo:        string(t.Direction),
		Mes:         t.Month,
		Anio:        t.Year,
		Observacion: t.Note,
	}
}

// transaction converts a stored record. Amounts are rounded to cents and
// read as magnitudes, since the direction carries the sign; the stored month
// and year are kept as they are.
func (r row) transaction() (core.Transaction, error) {
	d, err := core.ParseDate(r.Fecha)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:            r.ID,
		Date:          d,
		Person:        core.Person(r.Persona),
		Category:      r.Categoria,
		PaymentMethod: core.PaymentMethod(r.FormaPago),
		Amount:        core.Money{Cents: r.Importe.Abs().Shift(2).Round(0).IntPart()},
		Direction:     core.Direction(r.Tipo),
		Month:         r.Mes,
		Year:          r.Anio,
		Note:          r.Observacion,
	}, nil
}
