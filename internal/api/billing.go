package api

import (
	"context"
	"net/http"
)

// Plan is one subscription offering.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Tier         string   `json:"tier"`
	PriceCents   int      `json:"price_cents"`
	Interval     string   `json:"interval"`
	Features     []string `json:"features"`
	IsCurrent    bool     `json:"is_current"`
	MonthlyQuota int      `json:"monthly_quota"`
}

// Plans lists the available subscription plans.
func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	var resp struct {
		Plans []Plan `json:"plans"`
	}
	if err := c.do(ctx, http.MethodGet, "/billing/plans", nil, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Plans, nil
}

// CreateCheckout starts a checkout for the given plan and returns the
// URL the user completes payment at. Payment itself happens with the
// external processor, not here.
func (c *Client) CreateCheckout(ctx context.Context, planID string) (string, error) {
	payload := map[string]string{"plan_id": planID}
	var resp struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := c.do(ctx, http.MethodPost, "/billing/create-checkout", nil, payload, &resp, true); err != nil {
		return "", err
	}
	return resp.CheckoutURL, nil
}

// CreatePortal returns the URL of the subscription management portal.
func (c *Client) CreatePortal(ctx context.Context) (string, error) {
	var resp struct {
		PortalURL string `json:"portal_url"`
	}
	if err := c.do(ctx, http.MethodPost, "/billing/create-portal", nil, nil, &resp, true); err != nil {
		return "", err
	}
	return resp.PortalURL, nil
}
