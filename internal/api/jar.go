package api

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// Jar is an http.CookieJar that persists the backend session cookie to disk,
// so signing in survives restarts the same way a browser session would.
// Only cookies for the API origin are stored.
type Jar struct {
	mu     sync.Mutex
	inner  *cookiejar.Jar
	origin *url.URL
	path   string
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewJar creates a jar backed by the file at path, loading any previously
// saved cookies. A missing or unreadable file just means a fresh session.
func NewJar(path string, origin *url.URL) (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &Jar{inner: inner, origin: origin, path: path}
	j.load()
	return j, nil
}

func (j *Jar) load() {
	b, err := os.ReadFile(j.path)
	if err != nil {
		return
	}
	var stored []storedCookie
	if err := json.Unmarshal(b, &stored); err != nil {
		return
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	j.inner.SetCookies(j.origin, cookies)
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	if u.Host == j.origin.Host {
		j.save()
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// save writes the origin's cookies atomically (tmp file + rename).
func (j *Jar) save() {
	current := j.inner.Cookies(j.origin)
	stored := make([]storedCookie, 0, len(current))
	for _, c := range current {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return
	}
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return
	}
	_ = os.Rename(tmp, j.path)
}
