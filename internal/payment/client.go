// Package payment creates checkout sessions for orders not covered by
// credits. The computed price is already written onto the order before the
// handoff; this client's only job is obtaining the redirect handle.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type Client struct {
	http *resty.Client
}

type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type checkoutRequest struct {
	OrderID      string `json:"order_id"`
	PriceInCents int64  `json:"price_in_cents"`
	Currency     string `json:"currency"`
}

func NewClient(baseURL, apiKey string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(3)
	return &Client{http: http}
}

func (c *Client) CreateCheckoutSession(ctx context.Context, orderID uuid.UUID, priceInCents int64) (*CheckoutSession, error) {
	var session CheckoutSession
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(checkoutRequest{
			OrderID:      orderID.String(),
			PriceInCents: priceInCents,
			Currency:     "usd",
		}).
		SetResult(&session).
		Post("/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("checkout session request failed: %s", resp.Status())
	}
	return &session, nil
}
