package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Deal is the part of the deal-service response the payment flow reads.
type Deal struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Active bool    `json:"active"`
	Price  float64 `json:"price"`
}

type DealLookup interface {
	GetDeal(ctx context.Context, dealID int64, bearer string) (*Deal, error)
}

// DealClient calls GET /deals/{id} on the deal service.
type DealClient struct {
	baseURL string
	client  *http.Client
}

func NewDealClient(baseURL string, timeout time.Duration) *DealClient {
	return &DealClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// GetDeal forwards bearer so the deal service sees the caller's identity.
func (d *DealClient) GetDeal(ctx context.Context, dealID int64, bearer string) (*Deal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/deals/%d", d.baseURL, dealID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: id %d", ErrDealNotFound, dealID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var deal Deal
	if err := json.NewDecoder(resp.Body).Decode(&deal); err != nil {
		return nil, fmt.Errorf("%w: decode deal: %v", ErrUpstreamUnavailable, err)
	}
	return &deal, nil
}
