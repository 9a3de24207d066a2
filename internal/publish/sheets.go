// Package publish uploads result tables to Google Sheets.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"cobranza/internal/config"
	apperrors "cobranza/internal/errors"
)

// SheetsPublisher replaces the contents of one worksheet with a table.
type SheetsPublisher struct {
	service *sheets.Service
	cfg     config.SheetsConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewSheetsPublisher creates a publisher. A configured credentials file is
// used for authentication; extra client options are applied after it.
func NewSheetsPublisher(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger, opts ...option.ClientOption) (*SheetsPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SpreadsheetID == "" {
		return nil, apperrors.NewConfigError("spreadsheet id is required", nil)
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, apperrors.NewPublishError("failed to create sheets service", err)
	}

	chunk := cfg.ChunkSize
	if chunk < 1 {
		chunk = 1
	}
	cfg.ChunkSize = chunk

	return &SheetsPublisher{
		service: service,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		logger:  logger,
	}, nil
}

// Publish clears the worksheet and writes headers followed by records,
// ChunkSize rows per request. Requests are paced by the configured rate.
func (p *SheetsPublisher) Publish(ctx context.Context, headers []string, records [][]string) error {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return apperrors.NewPublishError("rate limiter wait", err)
	}
	_, err := p.service.Spreadsheets.Values.Clear(p.cfg.SpreadsheetID, quoteSheet(p.cfg.SheetName), &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return apperrors.NewPublishError("failed to clear sheet", err).
			WithContext("sheet", p.cfg.SheetName)
	}

	rows := toValues(headers, records)
	requests := 0
	for start := 0; start < len(rows); start += p.cfg.ChunkSize {
		end := min(start+p.cfg.ChunkSize, len(rows))

		if err := p.limiter.Wait(ctx); err != nil {
			return apperrors.NewPublishError("rate limiter wait", err)
		}
		rangeStr := fmt.Sprintf("%s!A%d", quoteSheet(p.cfg.SheetName), start+1)
		_, err := p.service.Spreadsheets.Values.Update(
			p.cfg.SpreadsheetID,
			rangeStr,
			&sheets.ValueRange{Values: rows[start:end]},
		).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return apperrors.NewPublishError("failed to write rows", err).
				WithContext("range", rangeStr)
		}
		requests++
	}

	p.logger.InfoContext(ctx, "Published to Google Sheets",
		slog.String("spreadsheet_id", p.cfg.SpreadsheetID),
		slog.String("sheet", p.cfg.SheetName),
		slog.Int("rows", len(records)),
		slog.Int("requests", requests))
	return nil
}

// quoteSheet renders a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toValues(headers []string, records [][]string) [][]interface{} {
	rows := make([][]interface{}, 0, len(records)+1)
	if len(headers) > 0 {
		rows = append(rows, toRow(headers))
	}
	for _, r := range records {
		rows = append(rows, toRow(r))
	}
	return rows
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
