package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mhtech-dashboard/internal/application/export"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

type MockSnapshotCreator struct {
	mock.Mock
}

func (m *MockSnapshotCreator) Create(ctx context.Context, input *export.SnapshotInput) (*export.Snapshot, error) {
	args := m.Called(ctx, input)
	if s := args.Get(0); s != nil {
		return s.(*export.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

type failingWorkbook struct{}

func (failingWorkbook) Build(context.Context) ([]byte, error) {
	return nil, errors.New(errors.ErrCodeExportFailed, "disk full")
}

func TestExportHandler_Workbook(t *testing.T) {
	h := NewExportHandler(export.NewWorkbookExporter(nil, nil), nil, nil, nil)

	w := httptest.NewRecorder()
	h.Workbook(w, httptest.NewRequest(http.MethodGet, "/api/v1/export.xlsx", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.WorkbookContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mhtech-survey.xlsx")
	// XLSX files are zip archives.
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
}

func TestExportHandler_WorkbookFailure(t *testing.T) {
	h := NewExportHandler(failingWorkbook{}, nil, nil, nil)
	w := httptest.NewRecorder()
	h.Workbook(w, httptest.NewRequest(http.MethodGet, "/api/v1/export.xlsx", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestExportHandler_SnapshotDisabled(t *testing.T) {
	h := NewExportHandler(failingWorkbook{}, nil, nil, nil)
	w := httptest.NewRecorder()
	h.CreateSnapshot(w, httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeFeatureDisabled))
}

func TestExportHandler_CreateSnapshot(t *testing.T) {
	creator := new(MockSnapshotCreator)
	creator.On("Create", mock.Anything, &export.SnapshotInput{Theme: "dark"}).
		Return(&export.Snapshot{ID: "abc", Objects: []export.SnapshotObject{{Name: "manifest.json", Size: 10}}}, nil)
	h := NewExportHandler(failingWorkbook{}, creator, nil, nil)

	w := httptest.NewRecorder()
	h.CreateSnapshot(w, httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", strings.NewReader(`{"theme":"dark"}`)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"abc"`)
	creator.AssertExpectations(t)
}

func TestExportHandler_CreateSnapshotEmptyBody(t *testing.T) {
	creator := new(MockSnapshotCreator)
	creator.On("Create", mock.Anything, &export.SnapshotInput{}).Return(&export.Snapshot{ID: "x"}, nil)
	h := NewExportHandler(failingWorkbook{}, creator, nil, nil)

	w := httptest.NewRecorder()
	h.CreateSnapshot(w, httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", http.NoBody))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestExportHandler_CreateSnapshotBadBody(t *testing.T) {
	creator := new(MockSnapshotCreator)
	h := NewExportHandler(failingWorkbook{}, creator, nil, nil)

	w := httptest.NewRecorder()
	h.CreateSnapshot(w, httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", strings.NewReader(`{"theme":`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExportHandler_CreateSnapshotStorageError(t *testing.T) {
	creator := new(MockSnapshotCreator)
	creator.On("Create", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeStorageFailed, "bucket gone"))
	h := NewExportHandler(failingWorkbook{}, creator, nil, nil)

	w := httptest.NewRecorder()
	h.CreateSnapshot(w, httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
