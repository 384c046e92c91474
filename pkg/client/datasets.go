package client

import (
	"context"
	"encoding/json"
	"net/url"
)

// Dataset is a raw dataset; Data keeps the server's JSON encoding.
type Dataset struct {
	ID   string          `json:"id"`
	Len  int             `json:"len"`
	Data json.RawMessage `json:"data"`
}

// DatasetsClient reads the generated datasets.
type DatasetsClient struct {
	client *Client
}

func (dc *DatasetsClient) List(ctx context.Context) ([]string, error) {
	var out struct {
		Datasets []string `json:"datasets"`
	}
	if err := dc.client.getJSON(ctx, "/api/v1/datasets", &out); err != nil {
		return nil, err
	}
	return out.Datasets, nil
}

func (dc *DatasetsClient) Get(ctx context.Context, id string) (*Dataset, error) {
	var out Dataset
	if err := dc.client.getJSON(ctx, "/api/v1/datasets/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
