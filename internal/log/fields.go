package log

import "sort"

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldRequestID      = "request_id"
	FieldClientIP       = "client_ip"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldQuery          = "query"
	FieldStatusCode     = "status_code"
	FieldDuration       = "duration_ms"
	FieldUserAgent      = "user_agent"
	FieldSuccess        = "success"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldSnapshot       = "snapshot"
	FieldRowsRead       = "rows_read"
	FieldRowsKept       = "rows_kept"
	FieldMissingDates   = "missing_dates"
	FieldDegradedAmount = "degraded_amounts"
	FieldMissingColumns = "missing_columns"
	FieldStorageRoot    = "storage_root"
	FieldSource         = "source"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentSnapshots = "snapshots"
	ComponentView      = "view"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentTrace     = "trace"
	ComponentService   = "service"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpIngest   = "ingest"
	OpRead     = "read"
	OpWrite    = "write"
	OpDelete   = "delete"
	OpList     = "list"
	OpView     = "view"
	OpImport   = "import"
	OpPublish  = "publish"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithSnapshot adds the snapshot name
func (f LogFields) WithSnapshot(name string) LogFields {
	f[FieldSnapshot] = name
	return f
}

// WithIngest adds row counters of an ingestion run
func (f LogFields) WithIngest(read, kept, missingDates, degradedAmounts int) LogFields {
	f[FieldRowsRead] = read
	f[FieldRowsKept] = kept
	f[FieldMissingDates] = missingDates
	f[FieldDegradedAmount] = degradedAmounts
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog, ordered by key so output
// is stable.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
