package log

import "presupuesto/internal/core"

// Attribute keys shared by every component.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldID          = "transaction_id"
	FieldPerson      = "person"
	FieldCategory    = "category"
	FieldDirection   = "direction"
	FieldAmountCents = "amount_cents"
	FieldView        = "view"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentReport    = "report"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentConsole   = "console"
)

const (
	OpCreate = "create"
	OpDelete = "delete"
	OpList   = "list"
	OpFetch  = "fetch"
	OpSync   = "sync"
	OpRender = "render"
)

// Fields accumulates key/value pairs in insertion order.
type Fields struct {
	kv []any
}

func NewFields() *Fields {
	return &Fields{}
}

func (f *Fields) add(k string, v any) *Fields {
	f.kv = append(f.kv, k, v)
	return f
}

func (f *Fields) WithComponent(component string) *Fields { return f.add(FieldComponent, component) }

func (f *Fields) WithRequestID(id string) *Fields {
	if id == "" {
		return f
	}
	return f.add(FieldRequestID, id)
}

func (f *Fields) WithClientIP(ip string) *Fields { return f.add(FieldClientIP, ip) }

func (f *Fields) WithOperation(op string) *Fields { return f.add(FieldOperation, op) }

func (f *Fields) WithError(err error) *Fields {
	if err == nil {
		return f
	}
	return f.add(FieldError, err.Error())
}

// WithTransaction adds the identifying attributes of t.
func (f *Fields) WithTransaction(t core.Transaction) *Fields {
	if t.ID != 0 {
		f.add(FieldID, t.ID)
	}
	return f.
		add(FieldPerson, string(t.Person)).
		add(FieldCategory, t.Category).
		add(FieldDirection, string(t.Direction)).
		add(FieldAmountCents, t.Amount.Cents).
		add(FieldYear, t.Year).
		add(FieldMonth, t.Month)
}

func (f *Fields) WithHTTPRequest(method, path, query, userAgent string) *Fields {
	f.add(FieldMethod, method).add(FieldPath, path)
	if query != "" {
		f.add(FieldQuery, query)
	}
	if userAgent != "" {
		f.add(FieldUserAgent, userAgent)
	}
	return f
}

func (f *Fields) WithHTTPResponse(status int, durationMs int64) *Fields {
	return f.add(FieldStatusCode, status).add(FieldDuration, durationMs).add(FieldSuccess, status < 400)
}

// With appends arbitrary pairs.
func (f *Fields) With(kv ...any) *Fields {
	f.kv = append(f.kv, kv...)
	return f
}

// Args returns the pairs ready for slog.
func (f *Fields) Args() []any {
	return f.kv
}
