package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
	"despesas/internal/log"
	"despesas/internal/middleware/trace"
	"despesas/internal/services"
)

// JSONResponseBuilder assembles a JSON response.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a response header.
func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Send writes the response to w.
func (b *JSONResponseBuilder) Send(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

type errorBody struct {
	Error          string   `json:"error"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	RequestID      string   `json:"request_id,omitempty"`
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	NewJSONResponse().Status(status).Body(errorBody{Error: msg}).Send(w)
}

// writeError maps service errors to HTTP statuses. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := core.IsSchemaError(err); ok {
		NewJSONResponse().
			Status(http.StatusUnprocessableEntity).
			Body(errorBody{Error: se.Error(), MissingColumns: se.Missing}).
			Send(w)
		return
	}

	status := statusFor(err)
	if status != http.StatusInternalServerError {
		writeStatus(w, status, err.Error())
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldPath, r.URL.Path, log.FieldError, err)
	NewJSONResponse().
		Status(status).
		Body(errorBody{Error: "internal error", RequestID: trace.GetRequestID(r.Context())}).
		Send(w)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidName), errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrAmountOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrImportDisabled), errors.Is(err, services.ErrHistoryDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

type recordResponse struct {
	Date        *string         `json:"date"`
	Description string          `json:"description"`
	Category    *string         `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	CostCenter  *string         `json:"cost_center"`
	Period      string          `json:"period"`
	EntryType   string          `json:"entry_type"`
}

type snapshotResponse struct {
	Name    string           `json:"name"`
	Records []recordResponse `json:"records"`
}

type dashboardResponse struct {
	Name    string           `json:"name"`
	Records []recordResponse `json:"records"`
	Summary core.Dashboard   `json:"summary"`
}

func toRecordResponses(records []core.ExpenseRecord) []recordResponse {
	out := make([]recordResponse, len(records))
	for i, r := range records {
		var date *string
		if !r.Date.IsMissing() {
			d := r.Date.Format("2006-01-02")
			date = &d
		}
		out[i] = recordResponse{
			Date:        date,
			Description: r.Description,
			Category:    r.Category,
			Amount:      r.Amount,
			Status:      r.Status,
			CostCenter:  r.CostCenter,
			Period:      r.PeriodLabel,
			EntryType:   r.EntryType,
		}
	}
	return out
}
