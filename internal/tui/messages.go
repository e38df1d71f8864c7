package tui

import "quoteterm/internal/model"

// Async message types for Bubble Tea commands. Every state transition in the
// app happens in Update in response to one of these (or a key/mouse/window
// event); the commands themselves never touch model state.

type authStatusMsg struct {
	authenticated bool
	err           error
}

type loginURLMsg struct {
	url string
	err error
}

// loadedMsg carries the result of the compound dashboard load: session
// re-check plus the single emails fetch that both the list and the stats
// are derived from.
type loadedMsg struct {
	records  []model.EmailRecord
	stats    model.Stats
	redirect bool // session gone; route to login, not an error
	err      error
}

type deleteResultMsg struct {
	recordID int64
	index    int
	err      error
}

type logoutDoneMsg struct {
	err error
}

type browserOpenedMsg struct {
	url string
	err error
}

// authPollMsg ticks while a browser sign-in is pending.
type authPollMsg struct{}

type statusMsg string
