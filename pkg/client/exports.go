package client

import (
	"context"
	"net/http"
	"time"
)

// SnapshotObject is one uploaded artifact.
type SnapshotObject struct {
	Name        string `json:"name"`
	View        string `json:"view,omitempty"`
	Format      string `json:"format,omitempty"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url,omitempty"`
}

type Snapshot struct {
	ID        string           `json:"id"`
	Seed      int64            `json:"seed"`
	Theme     string           `json:"theme"`
	CreatedAt time.Time        `json:"created_at"`
	Objects   []SnapshotObject `json:"objects"`
}

// ExportsClient downloads the workbook and creates snapshots.
type ExportsClient struct {
	client *Client
}

// Workbook downloads the XLSX export of every dataset.
func (ec *ExportsClient) Workbook(ctx context.Context) ([]byte, error) {
	resp, err := ec.client.do(ctx, http.MethodGet, "/api/v1/export.xlsx", nil)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// CreateSnapshot renders every chart server-side and uploads it. Servers
// without object storage answer 503; see APIError.IsUnavailable.
func (ec *ExportsClient) CreateSnapshot(ctx context.Context, theme string) (*Snapshot, error) {
	var out Snapshot
	if err := ec.client.postJSON(ctx, "/api/v1/snapshots", map[string]string{"theme": theme}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
