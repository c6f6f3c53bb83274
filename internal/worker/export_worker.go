// Package worker runs the background jobs consumed from the broker:
// building export files and recording alert events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/export"
	"finboard/internal/report"
	"finboard/internal/store"
)

// SheetsSink mirrors an export to a spreadsheet. Optional.
type SheetsSink interface {
	AppendRows(ctx context.Context, headers []string, rows [][]string) error
}

// ExportWorker turns export request messages into CSV files in the
// spool directory.
type ExportWorker struct {
	txs      store.TransactionStore
	settings store.SettingsStore
	spoolDir string
	sheets   SheetsSink
}

func NewExportWorker(txs store.TransactionStore, settings store.SettingsStore, spoolDir string, sheets SheetsSink) *ExportWorker {
	return &ExportWorker{txs: txs, settings: settings, spoolDir: spoolDir, sheets: sheets}
}

// HandleExportRequest builds the requested report and writes it to the
// spool. A report with no rows is not an error: the job completes with
// no file written.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	slog.InfoContext(ctx, "Processing export request",
		"report_type", msg.ReportType,
		"time_frame", msg.TimeFrame,
		"file_name", msg.FileName)

	records, headers, err := w.buildReport(ctx, msg)
	if err != nil {
		return err
	}

	csv, err := export.ToDelimitedText(records, headers)
	if err != nil {
		if errors.Is(err, export.ErrNoData) {
			slog.InfoContext(ctx, "Nothing to export, skipping file write",
				"report_type", msg.ReportType)
			return nil
		}
		return fmt.Errorf("format export: %w", err)
	}

	path, err := export.WriteSpoolFile(w.spoolDir, msg.FileName, csv)
	if err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	slog.InfoContext(ctx, "Export written", "file_path", path, "rows", len(records))

	if w.sheets != nil {
		rows := make([][]string, len(records))
		for i, rec := range records {
			row := make([]string, len(headers))
			for j, h := range headers {
				row[j] = rec[h]
			}
			rows[i] = row
		}
		if err := w.sheets.AppendRows(ctx, headers, rows); err != nil {
			// The spool file is the deliverable; the mirror is best effort.
			slog.ErrorContext(ctx, "Failed to mirror export to sheets", "error", err)
		}
	}
	return nil
}

func (w *ExportWorker) buildReport(ctx context.Context, msg *amqp.ExportRequestMessage) ([]export.Record, []string, error) {
	txs, err := w.txs.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list transactions: %w", err)
	}

	switch msg.ReportType {
	case "transactions":
		return export.TransactionRecords(txs), export.TransactionHeaders, nil

	case "trend":
		frame, err := core.ParseTimeFrame(msg.TimeFrame)
		if err != nil {
			return nil, nil, fmt.Errorf("export request: %w", err)
		}
		return export.TrendRecords(report.TrendSeries(txs, frame)), export.TrendHeaders, nil

	case "categories":
		return export.CategoryRecords(report.CategorySeries(txs)), export.CategoryHeaders, nil

	case "balance":
		return export.BalanceRecords(report.BalanceSeries(txs)), export.BalanceHeaders, nil

	case "budget":
		frame, err := core.ParseTimeFrame(msg.TimeFrame)
		if err != nil {
			return nil, nil, fmt.Errorf("export request: %w", err)
		}
		asOf, err := core.ParseDate(msg.AsOf)
		if err != nil {
			return nil, nil, fmt.Errorf("export request as_of: %w", err)
		}
		settings, err := w.settings.Get(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("get settings: %w", err)
		}
		points := report.BudgetSeries(txs, settings, asOf, frame)
		return export.BudgetRecords(points), export.BudgetHeaders, nil

	default:
		return nil, nil, fmt.Errorf("unknown report type %q", msg.ReportType)
	}
}

// AlertRecorderWorker persists alert events from the broker.
type AlertRecorderWorker struct {
	recorder store.AlertRecorder
}

func NewAlertRecorderWorker(recorder store.AlertRecorder) *AlertRecorderWorker {
	return &AlertRecorderWorker{recorder: recorder}
}

func (w *AlertRecorderWorker) HandleAlertEvent(ctx context.Context, msg *amqp.AlertEventMessage) error {
	err := w.recorder.RecordAlert(ctx, store.AlertEvent{
		Category:  msg.Category,
		Message:   msg.Message,
		Severity:  msg.Severity,
		CreatedAt: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("record alert event: %w", err)
	}
	slog.InfoContext(ctx, "Alert event recorded",
		"category", msg.Category,
		"severity", msg.Severity)
	return nil
}
