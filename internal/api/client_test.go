package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteterm/internal/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		APIBaseURL: ts.URL,
		Timeout:    5 * time.Second,
		ConfigDir:  t.TempDir(),
	}
	c, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Kind
}

func TestAuthStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"authenticated": true}`))
	})
	c := testClient(t, mux)

	ok, err := c.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthStatus_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close() // connection refused from here on

	cfg := &config.Config{APIBaseURL: url, Timeout: time.Second, ConfigDir: t.TempDir()}
	c, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.AuthStatus(context.Background())
	assert.Equal(t, KindTransport, kindOf(t, err))
}

func TestAuthStatus_BadJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})
	c := testClient(t, mux)

	_, err := c.AuthStatus(context.Background())
	assert.Equal(t, KindDecode, kindOf(t, err))
}

func TestSessionCookieRoundTrip(t *testing.T) {
	gotCookie := ""
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/status", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		w.Write([]byte(`{"authenticated": true}`))
	})
	c := testClient(t, mux)

	_, err := c.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotCookie, "no cookie on first request")

	_, err = c.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", gotCookie, "second request carries the session cookie")
}

func TestBeginLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "authorization_url": "https://accounts.example.com/o/oauth2/auth?x=1"}`))
	})
	c := testClient(t, mux)

	url, err := c.BeginLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/o/oauth2/auth?x=1", url)
}

func TestBeginLogin_NoURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "provider unavailable"}`))
	})
	c := testClient(t, mux)

	_, err := c.BeginLogin(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, "provider unavailable", apiErr.Message)
}

func TestListEmails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": [
			{"id": 1, "gmail_id": "g1", "subject": "Q1",
			 "extraction_result": {"email": "a@b.com", "to": "Alice", "Requirements": ["Widget"]}}
		]}`))
	})
	c := testClient(t, mux)

	raws, err := c.ListEmails(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, int64(1), raws[0].ID)
	assert.Equal(t, "g1", raws[0].GmailID)
	require.NotNil(t, raws[0].Extraction)
	assert.Equal(t, "a@b.com", raws[0].Extraction.Email)
	assert.Equal(t, "Alice", raws[0].Extraction.To)
	assert.JSONEq(t, `["Widget"]`, string(raws[0].Extraction.Requirements))
}

func TestListEmails_HTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/emails", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := testClient(t, mux)

	_, err := c.ListEmails(context.Background())
	assert.Equal(t, KindStatus, kindOf(t, err))
}

func TestListEmails_EnvelopeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	})
	c := testClient(t, mux)

	_, err := c.ListEmails(context.Background())
	assert.Equal(t, KindServer, kindOf(t, err))
}

func TestDeleteRequirement(t *testing.T) {
	var got deleteRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/requirement/delete", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success": true}`))
	})
	c := testClient(t, mux)

	err := c.DeleteRequirement(context.Background(), "g1", 2)
	require.NoError(t, err)
	assert.Equal(t, "g1", got.GmailID)
	assert.Equal(t, 2, got.Index)
}

func TestDeleteRequirement_ServerRejects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/requirement/delete", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "not found"}`))
	})
	c := testClient(t, mux)

	err := c.DeleteRequirement(context.Background(), "g1", 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, "not found", apiErr.Message)
}

func TestLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	c := testClient(t, mux)

	require.NoError(t, c.Logout(context.Background()))
}

func TestQuotationURL(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "http://localhost:5000", Timeout: time.Second, ConfigDir: t.TempDir()}
	c, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api/quotation/generate/g%2F1", c.QuotationURL("g/1"))
}
