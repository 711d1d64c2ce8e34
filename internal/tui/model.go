package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrickprogramme/reelscribe/internal/clipboard"
	"github.com/patrickprogramme/reelscribe/internal/export"
	"github.com/patrickprogramme/reelscribe/internal/lifecycle"
	"github.com/patrickprogramme/reelscribe/internal/render"
	"github.com/patrickprogramme/reelscribe/internal/subtitles"
	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// Deps regroupe les collaborateurs de l'interface plein écran.
type Deps struct {
	Life     *lifecycle.Lifecycle
	Notifier *clipboard.Notifier
	Exporter *export.Exporter
	Renderer *render.Renderer
	Linker   render.Linker
	Save     export.Selection
	Logger   *slog.Logger
}

type transcribeDoneMsg struct{ err error }

type refineDoneMsg struct{ err error }

type toastMsg struct{ label string }

type copiedMsg struct{ err error }

type fileMsg struct {
	paths []string
	err   error
}

type focus int

const (
	focusInput focus = iota
	focusResult
)

// Model est le modèle bubbletea de l'application.
type Model struct {
	ctx  context.Context
	deps Deps

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	focus    focus
	ready    bool // taille de fenêtre connue

	toast    string
	status   string // dernier fichier écrit
	quitting bool
}

// NewModel construit le modèle. initialURL pré-remplit le champ de saisie.
func NewModel(ctx context.Context, deps Deps, initialURL string) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	ti := textinput.New()
	ti.Placeholder = "https://www.instagram.com/reel/..."
	ti.Prompt = "URL › "
	ti.CharLimit = 2048
	ti.Width = 72
	ti.SetValue(initialURL)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:      ctx,
		deps:     deps,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		focus:    focusInput,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 3)
		m.input.Width = max(msg.Width-10, 20)
		m.ready = true
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateResult(msg)

	case spinner.TickMsg:
		if !m.deps.Life.Snapshot().Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case transcribeDoneMsg:
		m.refreshContent()
		m.viewport.GotoTop()
		if msg.err == nil {
			m.focus = focusResult
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		return m, nil

	case refineDoneMsg:
		m.refreshContent()
		return m, nil

	case toastMsg:
		m.toast = msg.label
		return m, nil

	case copiedMsg:
		// l'accusé arrive par toastMsg ; en cas d'échec le message est dans le snapshot
		return m, nil

	case fileMsg:
		if msg.err == nil && len(msg.paths) > 0 {
			m.status = "✓ " + strings.Join(msg.paths, ", ")
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.deps.Life.Snapshot().State == lifecycle.StateSubmitting {
			return m, nil
		}
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, m.transcribeCmd(m.input.Value()))
	case "esc":
		if m.deps.Life.Snapshot().Result != nil {
			m.focus = focusResult
			m.input.Blur()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.deps.Life.Snapshot()
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "n":
		m.focus = focusInput
		m.input.SetValue("")
		return m, m.input.Focus()
	case "r":
		if snap.Result == nil || snap.State == lifecycle.StateRefining {
			return m, nil
		}
		return m, tea.Batch(m.spinner.Tick, m.refineCmd())
	case "t":
		if snap.Result != nil {
			return m, m.copyCmd(snap.Result.Transcript, "Transcript")
		}
	case "s":
		if snap.Result != nil {
			return m, m.copySRTCmd(snap.Result)
		}
	case "v":
		if snap.Result != nil {
			return m, m.copyCmd(snap.Result.VTT, "VTT")
		}
	case "d":
		return m, m.downloadCmd(model.FormatSRT, snap.Result)
	case "D":
		return m, m.downloadCmd(model.FormatVTT, snap.Result)
	case "w":
		return m, m.saveCmd(snap.Result)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) refreshContent() {
	snap := m.deps.Life.Snapshot()
	if snap.Result == nil {
		m.viewport.SetContent("")
		return
	}
	out, err := m.deps.Renderer.RenderResult(render.NewView(snap.Result, m.deps.Linker))
	if err != nil {
		m.deps.Logger.Error("render failed", "error", err)
		out = snap.Result.Transcript
	}
	m.viewport.SetContent(out)
}

func (m Model) transcribeCmd(url string) tea.Cmd {
	life, ctx := m.deps.Life, m.ctx
	return func() tea.Msg {
		return transcribeDoneMsg{err: life.Transcribe(ctx, url)}
	}
}

func (m Model) refineCmd() tea.Cmd {
	life, ctx := m.deps.Life, m.ctx
	return func() tea.Msg {
		err := life.Refine(ctx)
		if errors.Is(err, lifecycle.ErrBusy) || errors.Is(err, lifecycle.ErrNothingToRefine) {
			err = nil
		}
		return refineDoneMsg{err: err}
	}
}

func (m Model) copyCmd(text, label string) tea.Cmd {
	n := m.deps.Notifier
	return func() tea.Msg {
		return copiedMsg{err: n.Copy(text, label)}
	}
}

func (m Model) copySRTCmd(r *model.Result) tea.Cmd {
	n, life := m.deps.Notifier, m.deps.Life
	return func() tea.Msg {
		doc, err := subtitles.ToSRT(r.Subtitles)
		if err != nil {
			life.ReportError("Invalid subtitle timing")
			return copiedMsg{err: err}
		}
		return copiedMsg{err: n.Copy(doc, "SRT")}
	}
}

func (m Model) downloadCmd(f model.Format, r *model.Result) tea.Cmd {
	ex, life, ctx := m.deps.Exporter, m.deps.Life, m.ctx
	return func() tea.Msg {
		p, err := ex.Download(ctx, f, r)
		if err != nil {
			life.ReportError(export.UserMessage(err, export.MsgDownloadFailed))
			return fileMsg{err: err}
		}
		return fileMsg{paths: []string{p}}
	}
}

func (m Model) saveCmd(r *model.Result) tea.Cmd {
	ex, life, sel := m.deps.Exporter, m.deps.Life, m.deps.Save
	return func() tea.Msg {
		paths, err := ex.SaveAll(r, sel)
		if err != nil {
			life.ReportError(export.UserMessage(err, export.MsgSaveFailed))
		}
		return fileMsg{paths: paths, err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.deps.Life.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("ReelScribe"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch snap.State {
	case lifecycle.StateSubmitting:
		fmt.Fprintf(&b, "%s Transcribing...\n", m.spinner.View())
	case lifecycle.StateRefining:
		fmt.Fprintf(&b, "%s Refining\n", m.spinner.View())
	default:
		b.WriteString("\n")
	}
	if snap.Err != "" {
		b.WriteString(errorStyle.Render(snap.Err))
		b.WriteString("\n")
	}

	if snap.Result != nil {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	if m.toast != "" {
		b.WriteString(toastStyle.Render("✓ " + m.toast + " copied"))
		b.WriteString("  ")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")

	if m.focus == focusInput {
		b.WriteString(helpStyle.Render("enter: transcribe • esc: result • ctrl+c: quit"))
	} else {
		b.WriteString(helpStyle.Render("r: fix grammar • t/s/v: copy • d/D: download srt/vtt • w: save • n: new url • q: quit"))
	}
	return b.String()
}
