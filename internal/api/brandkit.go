package api

import (
	"context"
	"net/http"
)

// BrandKit holds the brand assets applied when a generation request
// sets UseBrandKit.
type BrandKit struct {
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	FontFamily     string `json:"font_family"`
	LogoURL        string `json:"logo_url"`
	CompanyName    string `json:"company_name"`
}

// BrandKitGet fetches the user's brand kit. A user without one gets the
// zero value.
func (c *Client) BrandKitGet(ctx context.Context) (*BrandKit, error) {
	var kit BrandKit
	if err := c.do(ctx, http.MethodGet, "/users/brand-kit", nil, nil, &kit, true); err != nil {
		return nil, err
	}
	return &kit, nil
}

// BrandKitUpdate replaces the user's brand kit.
func (c *Client) BrandKitUpdate(ctx context.Context, kit *BrandKit) error {
	return c.do(ctx, http.MethodPost, "/users/brand-kit", nil, kit, nil, true)
}
