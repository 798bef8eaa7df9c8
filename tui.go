package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cli/oauth/device"

	"github.com/poonai/gist/internal/config"
	"github.com/poonai/gist/internal/gist"
)

var errLoginAborted = errors.New("login aborted")

// tokenResponse is sent to the model once polling ends.
type tokenResponse struct {
	login config.Login
	err   error
}

type poller interface {
	PollToken(ctx context.Context, code *device.CodeResponse) (config.Login, error)
}

// loginModel shows the verification code with a spinner while the
// access token is polled in the background.
type loginModel struct {
	ctx     context.Context
	flow    poller
	code    *device.CodeResponse
	style   lipgloss.Style
	spinner spinner.Model
	done    bool
	login   config.Login
	err     error
}

func newLoginModel(ctx context.Context, flow poller, code *device.CodeResponse) *loginModel {
	var style = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7F5283"))
	return &loginModel{
		ctx:     ctx,
		flow:    flow,
		code:    code,
		style:   style,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m *loginModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll)
}

func (m *loginModel) poll() tea.Msg {
	login, err := m.flow.PollToken(m.ctx, m.code)
	return tokenResponse{login: login, err: err}
}

func (m *loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tokenResponse:
		m.done = true
		m.login, m.err = msg.login, msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			m.err = errLoginAborted
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		// keep spinning until the user granted us the gist scope.
		var tick tea.Cmd
		m.spinner, tick = m.spinner.Update(msg)
		return m, tick
	}
	return m, nil
}

func (m *loginModel) View() string {
	if m.done {
		return ""
	}
	return m.style.Render(fmt.Sprintf(`
%s Waiting for the gist access to be granted,
please open %s and enter the code %s (copied to your clipboard)`,
		m.spinner.View(), m.code.VerificationURI, m.code.UserCode)) + "\n"
}

// runLoginView polls for the token while rendering loginModel. Leaving
// the view cancels the poll.
func runLoginView(ctx context.Context, flow poller, code *device.CodeResponse, in io.Reader, out io.Writer) (config.Login, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newLoginModel(ctx, flow, code)
	if _, err := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out)).Run(); err != nil {
		return config.Login{}, err
	}
	return m.login, m.err
}

func renderErrMsg(msg string) string {
	var style = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#EB1D36"))
	return style.Render(msg)
}

var _ poller = (*gist.DeviceFlow)(nil)
