package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	TracksView
	ArtistsView
	GenresView
	ShareView
	ConfirmView
	SavingView
	ResultView
)

// listViews is the tab order of the browsing views.
var listViews = []ViewState{TracksView, ArtistsView, GenresView}

// Options configures a [Model].
type Options struct {
	Fetcher   tasks.TopFetcher
	Saver     tasks.SessionSaver // optional; sharing is disabled without it
	Token     string
	TimeRange string
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	opts         Options
	view         ViewState
	width        int
	height       int
	tracks       list.Model
	artists      list.Model
	genres       list.Model
	profile      *tasks.Profile
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	pending      profileResult
	spinner      spinner.Model
	codeInput    textinput.Model
	code         string
	shared       *shareResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "B7K9QZ"
	input.CharLimit = session.CodeLength
	input.Width = 12

	return &Model{
		ctx:       ctx,
		opts:      opts,
		view:      LoadingView,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		codeInput: input,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts fetching the profile from Spotify.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startFetch())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView, SavingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case TracksView, ArtistsView, GenresView:
			return m.handleListKeys(msg)
		case ShareView:
			return m.handleShareKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgProfileFetched:
		res := msg.data.(profileResult)
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.setProfile(res.profile)
		m.view = TracksView
		return m, nil

	case MsgProfileShared:
		res := msg.data.(shareResult)
		m.shared = &res
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == LoadingView {
		return Error(fmt.Sprintf("Failed to load your Spotify profile: %v", m.err)) + "\n\n" + Muted("Press q to quit")
	}

	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case TracksView:
		return m.renderList(m.tracks)
	case ArtistsView:
		return m.renderList(m.artists)
	case GenresView:
		return m.renderList(m.genres)
	case ShareView:
		return m.renderShare()
	case ConfirmView:
		return m.renderConfirm()
	case SavingView:
		return fmt.Sprintf("%s Saving profile to session %s...", m.spinner.View(), m.code)
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.currentList().FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.view = m.cycle(1)
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.view = m.cycle(-1)
		return m, nil
	case key.Matches(msg, m.keys.share):
		if m.opts.Saver == nil {
			return m, nil
		}
		m.view = ShareView
		m.codeInput.SetValue("")
		return m, m.codeInput.Focus()
	}

	return m.updateLists(msg)
}

func (m *Model) handleShareKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.codeInput.Blur()
		m.view = TracksView
		return m, nil
	case "enter":
		code := strings.ToUpper(strings.TrimSpace(m.codeInput.Value()))
		if !session.ValidCode(code) {
			m.codeInput.SetValue(code)
			return m, nil
		}
		m.code = code
		m.codeInput.Blur()
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ShareView
		return m, m.codeInput.Focus()
	case key.Matches(msg, m.keys.userA):
		m.view = SavingView
		return m, m.share(string(models.UserA))
	case key.Matches(msg, m.keys.userB):
		m.view = SavingView
		return m, m.share(string(models.UserB))
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = TracksView
		m.shared = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TracksView:
		m.tracks, cmd = m.tracks.Update(msg)
	case ArtistsView:
		m.artists, cmd = m.artists.Update(msg)
	case GenresView:
		m.genres, cmd = m.genres.Update(msg)
	}
	return m, cmd
}

func (m *Model) currentList() *list.Model {
	switch m.view {
	case ArtistsView:
		return &m.artists
	case GenresView:
		return &m.genres
	default:
		return &m.tracks
	}
}

// cycle returns the browsing view dir steps away from the current one.
func (m *Model) cycle(dir int) ViewState {
	for i, v := range listViews {
		if v == m.view {
			n := len(listViews)
			return listViews[((i+dir)%n+n)%n]
		}
	}
	return TracksView
}

func (m *Model) setProfile(p *tasks.Profile) {
	m.profile = p
	w, h := m.listSize()
	m.tracks = newList("Top Tracks", trackItems(p.TopTracks), w, h)
	m.artists = newList("Top Artists", artistItems(p.TopArtists), w, h)
	m.genres = newList("Top Genres", genreItems(p.Genres), w, h)
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) resizeLists() {
	if m.profile == nil {
		return
	}
	w, h := m.listSize()
	m.tracks.SetSize(w, h)
	m.artists.SetSize(w, h)
	m.genres.SetSize(w, h)
}

func (m *Model) startFetch() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 10)
	progress := m.progressChan

	go func() {
		profile, err := tasks.FetchProfile(m.ctx, m.opts.Fetcher, m.opts.Token, m.opts.TimeRange, progress)
		m.pending = profileResult{profile: profile, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return profileFetchedMsg(m.pending.profile, m.pending.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) share(user string) tea.Cmd {
	code, data := m.code, m.profile.UserData()
	return func() tea.Msg {
		message, err := m.opts.Saver.SaveSessionData(m.ctx, code, user, data)
		return profileSharedMsg(code, user, message, err)
	}
}

func (m *Model) renderLoading() string {
	status := m.progress.Message
	if status == "" {
		status = "Connecting to Spotify..."
	}
	return fmt.Sprintf("%s\n\n%s %s", Title("Resonate"), m.spinner.View(), status)
}

func (m *Model) renderList(l list.Model) string {
	helpKeys := []key.Binding{m.keys.next, m.keys.prev}
	if m.opts.Saver != nil {
		helpKeys = append(helpKeys, m.keys.share)
	}
	helpKeys = append(helpKeys, m.keys.quit)
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderShare() string {
	title := Title("Share your profile to a session")
	hint := Muted("Enter the 6-character code from the other person.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, hint, m.codeInput.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := Title(fmt.Sprintf("Save to session %s?", m.code))
	info := fmt.Sprintf("Tracks: %d\nArtists: %d\n", len(m.profile.TopTracks), len(m.profile.TopArtists))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.userA, m.keys.userB, m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.shared == nil {
		return Error("No result available") + "\n\n" + helpView
	}
	if m.shared.err != nil {
		return Error(fmt.Sprintf("Failed to save to session %s: %v", m.shared.code, m.shared.err)) + "\n\n" + helpView
	}

	title := Success(fmt.Sprintf("✓ %s", m.shared.message))
	info := fmt.Sprintf("\nSession: %s\nSlot: %s", m.shared.code, m.shared.user)
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
