package wmsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/odyssey-erp/odyssey-wms/internal/lineitems"
)

type productRecord struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"productId"`
	Name         string `json:"name"`
	ProductName  string `json:"productName"`
	CategoryName string `json:"categoryName"`
	BrandName    string `json:"brandName"`
}

// ListProducts fetches the product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]lineitems.Entity, error) {
	env, err := c.do(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	var records []productRecord
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, fmt.Errorf("wmsapi: decode products: %w", err)
		}
	}
	out := make([]lineitems.Entity, 0, len(records))
	for _, r := range records {
		e := lineitems.Entity{ID: r.ID, Name: r.Name, CategoryName: r.CategoryName, BrandName: r.BrandName}
		if e.ID == 0 {
			e.ID = r.ProductID
		}
		if e.Name == "" {
			e.Name = r.ProductName
		}
		out = append(out, e)
	}
	return out, nil
}

// GetOrder fetches an existing record of the descriptor's type as raw JSON.
func (c *Client) GetOrder(ctx context.Context, d lineitems.Descriptor, id int64) (json.RawMessage, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%d", d.Resource, id), nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("%s %d not found", d.Title, id)}
	}
	return env.Data, nil
}

// CreateOrder posts a new record.
func (c *Client) CreateOrder(ctx context.Context, d lineitems.Descriptor, payload lineitems.Payload) (Result, error) {
	env, err := c.do(ctx, http.MethodPost, "/"+d.Resource, payload)
	if err != nil {
		return Result{}, err
	}
	return Result{StatusCode: env.StatusCode, Message: env.Message}, nil
}

// UpdateOrder replaces an existing record.
func (c *Client) UpdateOrder(ctx context.Context, d lineitems.Descriptor, id int64, payload lineitems.Payload) (Result, error) {
	env, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/%s/%d", d.Resource, id), payload)
	if err != nil {
		return Result{}, err
	}
	return Result{StatusCode: env.StatusCode, Message: env.Message}, nil
}
