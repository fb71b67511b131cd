// Package checkout talks to the hosted payment page provider (Stripe Checkout).
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const (
	sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"
	metadataBookingID    = "booking_id"
)

var (
	ErrInvalidRequest  = errors.New("invalid checkout request")
	ErrSessionNotFound = errors.New("checkout session not found")
)

type Client struct {
	api          *client.API
	httpClient   *http.Client
	baseURL      string
	secretKey    string
	dashboardURL string
	productName  string
}

type Option func(*Client)

func WithSecretKey(key string) Option {
	return func(c *Client) {
		c.secretKey = key
	}
}

// WithBaseURL points the client at a different API host, e.g. a local stub.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithDashboardURL sets the page the payment provider redirects back to.
func WithDashboardURL(u string) Option {
	return func(c *Client) {
		c.dashboardURL = u
	}
}

func WithProductName(name string) Option {
	return func(c *Client) {
		c.productName = name
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		dashboardURL: "http://localhost:3000/dashboard",
		productName:  "Course deposit",
	}

	for _, opt := range opts {
		opt(c)
	}

	cfg := &stripe.BackendConfig{
		HTTPClient:        c.httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if c.baseURL != "" {
		cfg.URL = stripe.String(c.baseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)

	c.api = &client.API{}
	c.api.Init(c.secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return c
}

func (c *Client) CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	if req.BookingID == "" || req.Amount <= 0 || req.Currency == "" {
		return nil, ErrInvalidRequest
	}

	name := req.Description
	if name == "" {
		name = c.productName
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.BookingID),
		SuccessURL:        stripe.String(c.returnURL(url.Values{"payment": {"success"}}, true)),
		CancelURL:         stripe.String(c.returnURL(url.Values{"payment": {"cancel"}}, false)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataBookingID, req.BookingID)

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	return toSession(s), nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*models.CheckoutSession, error) {
	if id == "" {
		return nil, ErrInvalidRequest
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("retrieving checkout session: %w", err)
	}
	return toSession(s), nil
}

// returnURL appends query to the dashboard URL. The session id placeholder is
// substituted by the provider, so it is appended unescaped.
func (c *Client) returnURL(query url.Values, withSession bool) string {
	u, err := url.Parse(c.dashboardURL)
	if err != nil {
		u = &url.URL{Path: c.dashboardURL}
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	out := u.String()
	if withSession {
		out += "&session_id=" + sessionIDPlaceholder
	}
	return out
}

func toSession(s *stripe.CheckoutSession) *models.CheckoutSession {
	ref := s.ClientReferenceID
	if ref == "" && s.Metadata != nil {
		ref = s.Metadata[metadataBookingID]
	}
	return &models.CheckoutSession{
		ID:                s.ID,
		URL:               s.URL,
		PaymentStatus:     string(s.PaymentStatus),
		ClientReferenceID: ref,
	}
}
