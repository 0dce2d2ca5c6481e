// Package google imports ledger ranges from Google Sheets.
package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"despesas/internal/log"
	ports "despesas/internal/sheets"
	"despesas/internal/table"
)

// Values are requested unformatted so numbers keep their raw value and
// dates arrive as serial numbers, the same shape an xlsx upload produces.
const (
	valueRenderOption    = "UNFORMATTED_VALUE"
	dateTimeRenderOption = "SERIAL_NUMBER"
)

var _ ports.TableSource = (*Client)(nil)

type Client struct {
	svc    *gsheet.Service
	logger *log.Logger
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, logger *log.Logger) *Client {
	return &Client{svc: svc, logger: log.OrDefault(logger, log.ComponentSheets)}
}

// NewFromEnv creates a read-only Sheets client from service account
// credentials in GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, logger *log.Logger) (*Client, error) {
	credentialsJSON, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, logger), nil
}

func credentialsFromEnv() ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newHTTPClientWithPooling bounds every Sheets call; imports are one-shot
// reads so a small idle pool is enough.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// FetchTable reads rng (A1 notation, e.g. "Despesas!A1:G") and converts it
// to a raw table.
func (c *Client) FetchTable(ctx context.Context, spreadsheetID, rng string) (table.Table, error) {
	if c.svc == nil {
		return table.Table{}, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(spreadsheetID) == "" || strings.TrimSpace(rng) == "" {
		return table.Table{}, errors.New("spreadsheet id and range are required")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption(valueRenderOption).
		DateTimeRenderOption(dateTimeRenderOption).
		Context(ctx).
		Do()
	if err != nil {
		return table.Table{}, fmt.Errorf("read range %s: %w", rng, err)
	}

	t := valuesToTable(resp.Values)
	c.logger.InfoContext(ctx, "Sheet range fetched",
		"range", rng, "rows", len(t.Rows), "columns", len(t.Headers))
	return t, nil
}
