package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/turtacn/mhtech-dashboard/internal/application/export"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// WorkbookBuilder builds the XLSX export.
type WorkbookBuilder interface {
	Build(ctx context.Context) ([]byte, error)
}

// SnapshotCreator stores a snapshot of every chart.
type SnapshotCreator interface {
	Create(ctx context.Context, input *export.SnapshotInput) (*export.Snapshot, error)
}

// maxSnapshotBody bounds the POST /snapshots request body.
const maxSnapshotBody = 4 << 10

// ExportHandler serves downloads and snapshots.
type ExportHandler struct {
	workbook  WorkbookBuilder
	snapshots SnapshotCreator
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// NewExportHandler wires the exporters. snapshots may be nil when object
// storage is disabled.
func NewExportHandler(workbook WorkbookBuilder, snapshots SnapshotCreator, metrics *prometheus.AppMetrics, logger logging.Logger) *ExportHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ExportHandler{workbook: workbook, snapshots: snapshots, metrics: metrics, logger: logger}
}

// Workbook handles GET /api/v1/export.xlsx.
func (h *ExportHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	data, err := h.workbook.Build(r.Context())
	prometheus.RecordExport(h.metrics, "workbook", err)
	if err != nil {
		h.logger.Error("workbook export failed", logging.Err(err))
		writeAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.WorkbookContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="mhtech-survey.xlsx"`)
	_, _ = w.Write(data)
}

// CreateSnapshot handles POST /api/v1/snapshots. An empty body selects the
// light theme.
func (h *ExportHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeAppError(w, errors.FeatureDisabled("snapshots"))
		return
	}

	var input export.SnapshotInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSnapshotBody)).Decode(&input); err != nil && err != io.EOF {
		writeAppError(w, errors.InvalidParam("invalid snapshot request body").WithCause(err))
		return
	}

	snap, err := h.snapshots.Create(r.Context(), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}
