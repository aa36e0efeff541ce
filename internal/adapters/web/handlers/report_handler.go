package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lcalzada-xor/widsview/internal/adapters/reporting"
	"github.com/lcalzada-xor/widsview/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

// ReportExporter renders a snapshot report
type ReportExporter interface {
	ExportSnapshot(ctx context.Context, report reporting.SnapshotReport) ([]byte, error)
}

// ReportHandler handles report generation
type ReportHandler struct {
	View     ports.ViewService
	Journal  HistoryReader
	Exporter ReportExporter
	now      func() time.Time
}

// NewReportHandler creates a new ReportHandler. journal may be nil.
func NewReportHandler(view ports.ViewService, journal HistoryReader, exporter ReportExporter) *ReportHandler {
	return &ReportHandler{
		View:     view,
		Journal:  journal,
		Exporter: exporter,
		now:      time.Now,
	}
}

// HandleGenerateReport renders the current snapshot as a PDF download
func (h *ReportHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	username := "Unknown"
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		username = session.Username
	}

	st := h.View.State()
	report := reporting.SnapshotReport{
		Title:       "Wireless Monitoring Report",
		GeneratedAt: h.now().UTC(),
		GeneratedBy: username,
		Snapshot:    st.Snapshot,
		Stale:       st.Stale,
	}

	if h.Journal != nil {
		history, err := h.Journal.History(r.Context(), maxHistoryLimit)
		if err != nil {
			log.Printf("Report without history: %v", err)
		} else {
			report.Sightings = history.Sightings
		}
	}

	data, err := h.Exporter.ExportSnapshot(r.Context(), report)
	if err != nil {
		log.Printf("Failed to render report: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	filename := fmt.Sprintf("widsview-report-%s.pdf", report.GeneratedAt.Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
