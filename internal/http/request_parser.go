package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"despesas/internal/storage"
	"despesas/internal/view"
)

const maxHistoryLimit = 500

type importRequest struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Range         string `json:"range"`
	Name          string `json:"name"`
}

func parseImportRequest(w http.ResponseWriter, r *http.Request) (importRequest, error) {
	var req importRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	req.SpreadsheetID = strings.TrimSpace(req.SpreadsheetID)
	req.Range = strings.TrimSpace(req.Range)
	if req.SpreadsheetID == "" || req.Range == "" {
		return req, errors.New("spreadsheet_id and range are required")
	}
	return req, nil
}

// parseCriteria reads one selection per dimension. An absent or blank
// parameter leaves the dimension unconstrained; parameters may repeat.
func parseCriteria(q url.Values) view.Criteria {
	return view.Criteria{
		Categories:  selection(q["category"]),
		Statuses:    selection(q["status"]),
		CostCenters: selection(q["cost_center"]),
	}
}

func selection(values []string) view.Selection {
	var s view.Selection
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s = append(s, v)
		}
	}
	if len(s) == 0 {
		return view.Everything()
	}
	return s
}

func parseLimit(q url.Values) (int, error) {
	raw := strings.TrimSpace(q.Get("limit"))
	if raw == "" {
		return storage.DefaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit %q: must be a positive integer", raw)
	}
	return min(n, maxHistoryLimit), nil
}
