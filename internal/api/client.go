package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"quoteterm/internal/config"
)

// Wire shapes as the backend sends them. Requirements stays raw because its
// elements are polymorphic (string or structured object); the quote package
// resolves that once at transform time.

type RawEmail struct {
	ID         int64          `json:"id"`
	GmailID    string         `json:"gmail_id"`
	Subject    string         `json:"subject"`
	ReceivedAt string         `json:"received_at"`
	Sender     string         `json:"sender"`
	Extraction *RawExtraction `json:"extraction_result"`
}

type RawExtraction struct {
	Email        string          `json:"email"`
	To           string          `json:"to"`
	Requirements json.RawMessage `json:"Requirements"`
}

type statusResponse struct {
	Authenticated bool `json:"authenticated"`
}

type loginResponse struct {
	Success          bool   `json:"success"`
	AuthorizationURL string `json:"authorization_url"`
	Message          string `json:"message"`
}

type emailsResponse struct {
	Success bool       `json:"success"`
	Data    []RawEmail `json:"data"`
}

type deleteRequest struct {
	GmailID string `json:"gmail_id"`
	Index   int    `json:"index"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Client talks to the quotation backend. Every call carries the session
// cookie, which is what lets the server correlate requests with the
// provider session it minted.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	origin, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse API base URL: %w", err)
	}
	jar, err := NewJar(cfg.CookiePath(), origin)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json")

	return &Client{http: rc, log: logger}, nil
}

// AuthStatus reports whether the server recognizes the current session.
func (c *Client) AuthStatus(ctx context.Context) (bool, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/auth/status")
	if err != nil {
		return false, &APIError{Kind: KindTransport, Op: "auth status", Err: err}
	}
	if !resp.IsSuccess() {
		return false, &APIError{Kind: KindStatus, Op: "auth status", Status: resp.StatusCode()}
	}
	var out statusResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return false, &APIError{Kind: KindDecode, Op: "auth status", Err: err}
	}
	c.log.Debug().Bool("authenticated", out.Authenticated).Msg("auth status checked")
	return out.Authenticated, nil
}

// BeginLogin asks the server for the identity provider's authorization URL.
// The caller hands that URL to a real browser; the handshake itself is the
// server's business.
func (c *Client) BeginLogin(ctx context.Context) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/auth/login")
	if err != nil {
		return "", &APIError{Kind: KindTransport, Op: "begin login", Err: err}
	}
	if !resp.IsSuccess() {
		return "", &APIError{Kind: KindStatus, Op: "begin login", Status: resp.StatusCode()}
	}
	var out loginResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", &APIError{Kind: KindDecode, Op: "begin login", Err: err}
	}
	if !out.Success || out.AuthorizationURL == "" {
		return "", &APIError{Kind: KindServer, Op: "begin login", Message: out.Message}
	}
	return out.AuthorizationURL, nil
}

// Logout invalidates the server session.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/api/auth/logout")
	if err != nil {
		return &APIError{Kind: KindTransport, Op: "logout", Err: err}
	}
	if !resp.IsSuccess() {
		return &APIError{Kind: KindStatus, Op: "logout", Status: resp.StatusCode()}
	}
	return nil
}

// ListEmails fetches the full email collection. This single payload is the
// sole source for both the record list and the aggregate stats.
func (c *Client) ListEmails(ctx context.Context) ([]RawEmail, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/emails")
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Op: "list emails", Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Kind: KindStatus, Op: "list emails", Status: resp.StatusCode()}
	}
	var out emailsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &APIError{Kind: KindDecode, Op: "list emails", Err: err}
	}
	if !out.Success {
		return nil, &APIError{Kind: KindServer, Op: "list emails"}
	}
	c.log.Debug().Int("count", len(out.Data)).Msg("emails listed")
	return out.Data, nil
}

// DeleteRequirement removes one requirement by its position in the owner
// record's sequence. Deletion is positional on purpose: that is the wire
// contract, under a single-admin assumption.
func (c *Client) DeleteRequirement(ctx context.Context, gmailID string, index int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(deleteRequest{GmailID: gmailID, Index: index}).
		Post("/api/requirement/delete")
	if err != nil {
		return &APIError{Kind: KindTransport, Op: "delete requirement", Err: err}
	}
	if !resp.IsSuccess() {
		return &APIError{Kind: KindStatus, Op: "delete requirement", Status: resp.StatusCode()}
	}
	var out deleteResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return &APIError{Kind: KindDecode, Op: "delete requirement", Err: err}
	}
	if !out.Success {
		return &APIError{Kind: KindServer, Op: "delete requirement", Message: out.Error}
	}
	c.log.Info().Str("gmail_id", gmailID).Int("index", index).Msg("requirement deleted")
	return nil
}

// QuotationURL builds the document download URL for a record. The response
// is a file, so it is opened in a browser rather than consumed here.
func (c *Client) QuotationURL(gmailID string) string {
	return c.http.BaseURL + "/api/quotation/generate/" + url.PathEscape(gmailID)
}
