package http

import (
	"errors"
	"fmt"
	"net/http"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/export"
	"finboard/internal/report"
)

// handleExport serves CSV downloads. GET streams the file back
// directly; POST queues an async export job for the worker.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.downloadExport(w, r)
	case http.MethodPost:
		s.queueExport(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) downloadExport(w http.ResponseWriter, r *http.Request) {
	reportType := r.URL.Query().Get("report_type")
	if reportType == "" {
		reportType = "transactions"
	}
	fileName := r.URL.Query().Get("file_name")
	if fileName == "" {
		fileName = reportType + ".csv"
	}

	records, headers, err := s.buildExport(r, reportType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	csv, err := export.ToDelimitedText(records, headers)
	if err != nil {
		if errors.Is(err, export.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to format export")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

func (s *Server) buildExport(r *http.Request, reportType string) ([]export.Record, []string, error) {
	txs, err := s.txStore.List(r.Context())
	if err != nil {
		return nil, nil, errors.New("failed to list transactions")
	}

	switch reportType {
	case "transactions":
		return export.TransactionRecords(txs), export.TransactionHeaders, nil
	case "trend":
		frame, err := queryTimeFrame(r)
		if err != nil {
			return nil, nil, err
		}
		return export.TrendRecords(report.TrendSeries(txs, frame)), export.TrendHeaders, nil
	case "categories":
		return export.CategoryRecords(report.CategorySeries(txs)), export.CategoryHeaders, nil
	case "balance":
		return export.BalanceRecords(report.BalanceSeries(txs)), export.BalanceHeaders, nil
	case "budget":
		frame, err := queryTimeFrame(r)
		if err != nil {
			return nil, nil, err
		}
		settings, err := s.settings.Get(r.Context())
		if err != nil {
			return nil, nil, errors.New("failed to load settings")
		}
		asOf := core.Date{Time: s.now()}
		if d, ok, err := queryDate(r, "as_of"); err != nil {
			return nil, nil, err
		} else if ok {
			asOf = d
		}
		return export.BudgetRecords(report.BudgetSeries(txs, settings, asOf, frame)), export.BudgetHeaders, nil
	default:
		return nil, nil, fmt.Errorf("unknown report type %q", reportType)
	}
}

type exportRequest struct {
	ReportType string `json:"report_type"`
	TimeFrame  string `json:"time_frame,omitempty"`
	FileName   string `json:"file_name,omitempty"`
}

func (s *Server) queueExport(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "async exports are not configured")
		return
	}

	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.ReportType {
	case "transactions", "trend", "categories", "balance", "budget":
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown report type %q", req.ReportType))
		return
	}
	timeFrame := req.TimeFrame
	if timeFrame == "" {
		timeFrame = string(core.Monthly)
	} else if _, err := core.ParseTimeFrame(timeFrame); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fileName := req.FileName
	if fileName == "" {
		fileName = req.ReportType
	}

	asOf := core.Date{Time: s.now()}
	msg := amqp.NewExportRequestMessage(req.ReportType, timeFrame, asOf.String(), fileName)
	if err := s.publisher.PublishExportRequest(r.Context(), msg); err != nil {
		writeError(w, http.StatusBadGateway, "failed to queue export")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":    "queued",
		"file_name": fileName,
	})
}
