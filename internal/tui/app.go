package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"quoteterm/internal/api"
	"quoteterm/internal/browser"
	"quoteterm/internal/model"
	"quoteterm/internal/quote"
)

type viewState int

const (
	viewGate      viewState = iota // initial session check
	viewLogin                      // sign-in affordance (or waiting for the browser round-trip)
	viewLoading                    // dashboard load in flight
	viewDashboard                  // record table; the requirements panel may sit on top
	viewError                      // load failed; retry offered
)

const loadFailedMessage = "Failed to load data. Please check your connection."

type AppModel struct {
	client *api.Client
	log    zerolog.Logger

	// View state machine
	view    viewState
	loadErr string
	status  string

	// Data, replaced wholesale on every load (last write wins)
	records []model.EmailRecord
	stats   model.Stats

	// Detail panel. At most one open, and only for an id present in records.
	panelOpen  bool
	panelID    int64
	panelTable table.Model

	// Login handoff
	waitingProvider bool
	authURL         string

	// Sub-models
	emailTable table.Model
	spin       spinner.Model

	// Layout
	width, height int

	pollEvery time.Duration
}

func NewAppModel(client *api.Client, logger zerolog.Logger, pollEvery time.Duration) AppModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	et := table.New(
		table.WithColumns(emailColumns(80)),
		table.WithFocused(true),
	)
	et.SetStyles(tableStyles())

	pt := table.New(table.WithColumns(requirementColumns(76)))
	pt.SetStyles(tableStyles())

	return AppModel{
		client:     client,
		log:        logger,
		view:       viewGate,
		emailTable: et,
		panelTable: pt,
		spin:       sp,
		pollEvery:  pollEvery,
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.checkAuthCmd(), m.spin.Tick)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.emailTable.SetWidth(msg.Width)
		m.emailTable.SetHeight(max(msg.Height-10, 3))
		m.emailTable.SetColumns(emailColumns(msg.Width))
		m.panelTable.SetColumns(requirementColumns(panelWidth(msg.Width) - 4))
		m.panelTable.SetHeight(max(min(msg.Height-12, 14), 3))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		if m.view == viewGate || m.view == viewLoading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case authStatusMsg:
		return m.handleAuthStatus(msg)

	case authPollMsg:
		if m.waitingProvider {
			return m, m.checkAuthCmd()
		}
		return m, nil

	case loginURLMsg:
		if msg.err != nil {
			// The original behavior: a failed login initiation falls through
			// to the dashboard, whose own session check bounces the user
			// straight back here. The dashboard re-check is the real guard.
			m.log.Error().Err(msg.err).Msg("login initiation failed")
			m.view = viewLoading
			return m, tea.Batch(m.loadCmd(), m.spin.Tick)
		}
		m.authURL = msg.url
		m.waitingProvider = true
		return m, tea.Batch(m.openBrowserCmd(msg.url), m.pollCmd())

	case browserOpenedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("url", msg.url).Msg("cannot open browser")
			m.status = "Could not open a browser; copy the URL shown above."
			return m, clearStatusAfter(5 * time.Second)
		}
		return m, nil

	case loadedMsg:
		return m.handleLoaded(msg)

	case deleteResultMsg:
		return m.handleDeleteResult(msg)

	case logoutDoneMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("logout failed")
		}
		// Either way the session is gone as far as this client is concerned.
		m.records = nil
		m.stats = model.Stats{}
		m.closePanel()
		m.waitingProvider = false
		m.view = viewLogin
		return m, nil

	case statusMsg:
		if string(msg) == "" {
			m.status = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *AppModel) handleAuthStatus(msg authStatusMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Spec for the gate: a transport failure is logged and treated as
		// unauthenticated. It never blocks rendering the login affordance.
		m.log.Warn().Err(msg.err).Msg("auth status check failed")
		if m.waitingProvider {
			return m, m.pollCmd()
		}
		m.view = viewLogin
		return m, nil
	}
	if msg.authenticated {
		m.waitingProvider = false
		m.view = viewLoading
		return m, tea.Batch(m.loadCmd(), m.spin.Tick)
	}
	if m.waitingProvider {
		return m, m.pollCmd()
	}
	m.view = viewLogin
	return m, nil
}

func (m *AppModel) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.redirect {
		m.waitingProvider = false
		m.view = viewLogin
		return m, nil
	}
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("dashboard load failed")
		m.loadErr = loadFailedMessage
		m.view = viewError
		return m, nil
	}
	m.records = msg.records
	m.stats = msg.stats
	m.loadErr = ""
	m.view = viewDashboard
	m.emailTable.SetRows(emailRows(m.records))
	if m.emailTable.Cursor() >= len(m.records) {
		m.emailTable.SetCursor(max(len(m.records)-1, 0))
	}
	// A reload fully replaces the list. Keep the panel only if its record
	// survived; it must never reference an id that is no longer present.
	if m.panelOpen {
		if rec := m.findRecord(m.panelID); rec != nil {
			m.refreshPanelRows(rec)
		} else {
			m.closePanel()
		}
	}
	return m, nil
}

func (m *AppModel) handleDeleteResult(msg deleteResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Failure leaves the list untouched and the panel open; the user
		// sees the server's message when it sent one.
		m.log.Error().Err(msg.err).Int64("record_id", msg.recordID).Int("index", msg.index).
			Msg("delete requirement failed")
		m.status = serverMessage(msg.err, "Failed to delete requirement")
		return m, clearStatusAfter(5 * time.Second)
	}
	rec := m.findRecord(msg.recordID)
	if rec == nil || msg.index < 0 || msg.index >= len(rec.Requirements) {
		return m, nil
	}
	// Remove exactly the confirmed index; relative order of the rest holds.
	rec.Requirements = append(rec.Requirements[:msg.index], rec.Requirements[msg.index+1:]...)
	m.stats = quote.DeriveStats(m.records)
	m.emailTable.SetRows(emailRows(m.records))
	if m.panelOpen && m.panelID == msg.recordID {
		m.refreshPanelRows(rec)
		if m.panelTable.Cursor() >= len(rec.Requirements) {
			m.panelTable.SetCursor(max(len(rec.Requirements)-1, 0))
		}
	}
	m.status = "Requirement deleted"
	return m, clearStatusAfter(2 * time.Second)
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.panelOpen {
		switch key {
		case "esc":
			m.closePanel()
			return m, nil
		case "x":
			return m.deleteSelectedRequirement()
		case "q":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.panelTable, cmd = m.panelTable.Update(msg)
		return m, cmd
	}

	switch m.view {
	case viewLogin:
		switch key {
		case "enter":
			if m.waitingProvider {
				// Reopen the provider page; the original URL is still valid.
				return m, m.openBrowserCmd(m.authURL)
			}
			return m, m.beginLoginCmd()
		case "esc":
			if m.waitingProvider {
				m.waitingProvider = false
				return m, nil
			}
		case "q":
			return m, tea.Quit
		}

	case viewDashboard:
		switch key {
		case "q":
			return m, tea.Quit
		case "r":
			m.view = viewLoading
			return m, tea.Batch(m.loadCmd(), m.spin.Tick)
		case "enter":
			if rec := m.selectedRecord(); rec != nil {
				m.togglePanel(rec.ID)
			}
			return m, nil
		case "o":
			if rec := m.selectedRecord(); rec != nil {
				return m, m.openBrowserCmd(m.client.QuotationURL(rec.GmailID))
			}
			return m, nil
		case "L":
			return m, m.logoutCmd()
		}
		var cmd tea.Cmd
		m.emailTable, cmd = m.emailTable.Update(msg)
		return m, cmd

	case viewError:
		switch key {
		case "r":
			m.view = viewLoading
			return m, tea.Batch(m.loadCmd(), m.spin.Tick)
		case "q":
			return m, tea.Quit
		}

	case viewGate, viewLoading:
		if key == "q" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// handleMouse implements the outside-press dismissal: a press outside the
// panel bounds closes it, a press inside does not (the TUI equivalent of
// stopping propagation at the modal).
func (m *AppModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.panelOpen || msg.Action != tea.MouseActionPress {
		return m, nil
	}
	if !m.insidePanel(msg.X, msg.Y) {
		m.closePanel()
	}
	return m, nil
}

// Panel state. These helpers are the only writers of panelOpen/panelID, which
// keeps the single-open invariant in one place.

func (m *AppModel) togglePanel(id int64) {
	if m.panelOpen && m.panelID == id {
		m.closePanel()
		return
	}
	m.openPanel(id)
}

func (m *AppModel) openPanel(id int64) {
	rec := m.findRecord(id)
	if rec == nil {
		return
	}
	m.panelOpen = true
	m.panelID = id
	m.refreshPanelRows(rec)
	m.panelTable.SetCursor(0)
	m.panelTable.Focus()
}

func (m *AppModel) closePanel() {
	m.panelOpen = false
	m.panelTable.Blur()
}

func (m *AppModel) refreshPanelRows(rec *model.EmailRecord) {
	m.panelTable.SetRows(requirementRows(rec.Requirements))
}

func (m *AppModel) deleteSelectedRequirement() (tea.Model, tea.Cmd) {
	rec := m.findRecord(m.panelID)
	if rec == nil {
		return m, nil
	}
	idx := m.panelTable.Cursor()
	if idx < 0 || idx >= len(rec.Requirements) {
		return m, nil
	}
	m.status = "Deleting..."
	return m, m.deleteCmd(rec.GmailID, rec.ID, idx)
}

func (m *AppModel) findRecord(id int64) *model.EmailRecord {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i]
		}
	}
	return nil
}

func (m *AppModel) selectedRecord() *model.EmailRecord {
	i := m.emailTable.Cursor()
	if i < 0 || i >= len(m.records) {
		return nil
	}
	return &m.records[i]
}

// Commands. All I/O lives here; none of these closures touch model state.

func (m *AppModel) checkAuthCmd() tea.Cmd {
	return func() tea.Msg {
		ok, err := m.client.AuthStatus(context.Background())
		return authStatusMsg{authenticated: ok, err: err}
	}
}

func (m *AppModel) beginLoginCmd() tea.Cmd {
	return func() tea.Msg {
		url, err := m.client.BeginLogin(context.Background())
		return loginURLMsg{url: url, err: err}
	}
}

// loadCmd is the compound dashboard load: re-verify the session, then fetch
// the email collection once and derive both the records and the stats from
// that single payload.
func (m *AppModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		ok, err := m.client.AuthStatus(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		if !ok {
			return loadedMsg{redirect: true}
		}
		raws, err := m.client.ListEmails(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		records := quote.Transform(raws)
		return loadedMsg{records: records, stats: quote.DeriveStats(records)}
	}
}

func (m *AppModel) deleteCmd(gmailID string, recordID int64, index int) tea.Cmd {
	return func() tea.Msg {
		err := m.client.DeleteRequirement(context.Background(), gmailID, index)
		return deleteResultMsg{recordID: recordID, index: index, err: err}
	}
}

func (m *AppModel) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: m.client.Logout(context.Background())}
	}
}

func (m *AppModel) openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return browserOpenedMsg{url: url, err: browser.Open(url)}
	}
}

func (m *AppModel) pollCmd() tea.Cmd {
	return tea.Tick(m.pollEvery, func(time.Time) tea.Msg {
		return authPollMsg{}
	})
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusMsg("")
	})
}

// serverMessage prefers the backend-provided error text when there is one.
func serverMessage(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// View renders the current view; the requirements panel replaces the
// dashboard while open.
func (m *AppModel) View() string {
	switch m.view {
	case viewGate:
		return fmt.Sprintf("\n %s Checking session...\n", m.spin.View())
	case viewLoading:
		return fmt.Sprintf("\n %s Loading emails...\n", m.spin.View())
	case viewLogin:
		return m.loginView()
	case viewError:
		return m.errorView()
	case viewDashboard:
		if m.panelOpen {
			return m.panelView()
		}
		return m.dashboardView()
	}
	return ""
}

// insidePanel tests a terminal cell against the centered panel bounds.
func (m *AppModel) insidePanel(x, y int) bool {
	box := m.renderPanelBox()
	w := lipgloss.Width(box)
	h := lipgloss.Height(box)
	x0 := (m.width - w) / 2
	y0 := (m.height - h) / 2
	return x >= x0 && x < x0+w && y >= y0 && y < y0+h
}
