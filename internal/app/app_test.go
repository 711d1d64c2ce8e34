package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/patrickprogramme/reelscribe/internal/config"
	"github.com/patrickprogramme/reelscribe/internal/lifecycle"
	"github.com/patrickprogramme/reelscribe/internal/render"
	"github.com/patrickprogramme/reelscribe/internal/stub"
	"github.com/patrickprogramme/reelscribe/internal/ui"
)

const reelURL = "https://www.instagram.com/reel/DA1b2C3/"

// scriptedUI rejoue des URLs et des commandes, puis renvoie ErrClosed.
type scriptedUI struct {
	mu     sync.Mutex
	urls   []string
	cmds   []ui.Command
	infos  []string
	errors []string
}

func (s *scriptedUI) GetURL(ctx context.Context) (string, error) {
	if len(s.urls) == 0 {
		return "", ui.ErrClosed
	}
	u := s.urls[0]
	s.urls = s.urls[1:]
	return u, nil
}

func (s *scriptedUI) ReadCommand(ctx context.Context) (ui.Command, error) {
	if len(s.cmds) == 0 {
		return ui.CmdUnknown, ui.ErrClosed
	}
	c := s.cmds[0]
	s.cmds = s.cmds[1:]
	return c, nil
}

func (s *scriptedUI) PrintInfo(ctx context.Context, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, msg)
}

func (s *scriptedUI) PrintError(ctx context.Context, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
}

func (s *scriptedUI) output() string { return strings.Join(s.infos, "\n") }

type memClipboard struct {
	texts []string
	fail  bool
}

func (m *memClipboard) Write(text string) error {
	if m.fail {
		return errors.New("no clipboard")
	}
	m.texts = append(m.texts, text)
	return nil
}

type fixture struct {
	app  *App
	ui   *scriptedUI
	clip *memClipboard
	svc  *stub.Service
	out  string
}

func newFixture(t *testing.T, flags *CLIFlags, tweak func(*config.Config)) *fixture {
	t.Helper()
	svc := stub.New()
	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)

	out := t.TempDir()
	cfg := &config.Config{
		APIBase:        srv.URL,
		OutputDir:      out,
		SaveTranscript: true,
		SaveSRT:        true,
		CopyTranscript: true,
		LogLevel:       "info",
	}
	if tweak != nil {
		tweak(cfg)
	}
	r, err := render.EmbeddedRenderer()
	if err != nil {
		t.Fatal(err)
	}
	u := &scriptedUI{}
	clip := &memClipboard{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(cfg, u, flags, r, WithClipboard(clip), WithLogger(logger))
	return &fixture{app: a, ui: u, clip: clip, svc: svc, out: out}
}

func TestRunAuto(t *testing.T) {
	f := newFixture(t, &CLIFlags{URL: reelURL, Auto: true, Refine: true}, nil)

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.svc.Calls(stub.PathTranscribe) != 1 || f.svc.Calls(stub.PathRefine) != 1 {
		t.Errorf("calls transcribe=%d refine=%d", f.svc.Calls(stub.PathTranscribe), f.svc.Calls(stub.PathRefine))
	}

	txt := filepath.Join(f.out, "Instagram DA1b2C3 (en).txt")
	b, err := os.ReadFile(txt)
	if err != nil {
		t.Fatalf("transcript not saved: %v", err)
	}
	refined := stub.Clean(stubTranscript(t))
	if string(b) != refined {
		t.Errorf("saved transcript = %q; want refined %q", b, refined)
	}
	if _, err := os.Stat(filepath.Join(f.out, "Instagram DA1b2C3 (en).srt")); err != nil {
		t.Errorf("srt not saved: %v", err)
	}
	if len(f.clip.texts) != 1 || f.clip.texts[0] != refined {
		t.Errorf("clipboard = %q", f.clip.texts)
	}
}

// stubTranscript retourne le transcript de démonstration du stub.
func stubTranscript(t *testing.T) string {
	t.Helper()
	return "so this is the demo reel um showing how the transcription works"
}

func TestRunAuto_TranscribeFailure(t *testing.T) {
	f := newFixture(t, &CLIFlags{URL: reelURL, Auto: true}, nil)
	f.svc.FailTranscribe(http.StatusBadGateway, "could not download reel")

	err := f.app.Run(context.Background())
	if !errors.Is(err, ErrAutoFailed) {
		t.Fatalf("err = %v; want ErrAutoFailed", err)
	}
	if len(f.ui.errors) != 1 || f.ui.errors[0] != "could not download reel" {
		t.Errorf("errors = %q", f.ui.errors)
	}
	entries, _ := os.ReadDir(f.out)
	if len(entries) != 0 {
		t.Errorf("files written after failure: %v", entries)
	}
}

func TestRunAuto_RefineFailureKeepsRawTranscript(t *testing.T) {
	f := newFixture(t, &CLIFlags{URL: reelURL, Auto: true, Refine: true}, nil)
	f.svc.FailRefine(http.StatusInternalServerError, "")

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.ui.errors) != 1 || f.ui.errors[0] != lifecycle.MsgRefineHTTP {
		t.Errorf("errors = %q", f.ui.errors)
	}
	b, _ := os.ReadFile(filepath.Join(f.out, "Instagram DA1b2C3 (en).txt"))
	if string(b) != stubTranscript(t) {
		t.Errorf("saved transcript = %q", b)
	}
}

func TestRunTerminal_Commands(t *testing.T) {
	f := newFixture(t, &CLIFlags{}, nil)
	f.ui.urls = []string{reelURL}
	f.ui.cmds = []ui.Command{
		ui.CmdCopyTranscript,
		ui.CmdCopySRT,
		ui.CmdCopyVTT,
		ui.CmdRefine,
		ui.CmdDownloadSRT,
		ui.CmdQuit,
	}

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(f.clip.texts) != 3 {
		t.Fatalf("clipboard writes = %d", len(f.clip.texts))
	}
	if !strings.HasPrefix(f.clip.texts[1], "1\n00:00:00,000 --> 00:00:02,400\n") {
		t.Errorf("srt copy = %q", f.clip.texts[1])
	}
	if !strings.HasPrefix(f.clip.texts[2], "WEBVTT") {
		t.Errorf("vtt copy = %q", f.clip.texts[2])
	}
	for _, want := range []string{"✓ Transcript copied", "✓ SRT copied", "✓ VTT copied", "== Transcript ==", "[Platform: Instagram]", "Download SRT: "} {
		if !strings.Contains(f.ui.output(), want) {
			t.Errorf("output misses %q", want)
		}
	}

	snap := f.app.Lifecycle().Snapshot()
	if snap.State != lifecycle.StateReady || snap.Result.Transcript != stub.Clean(stubTranscript(t)) {
		t.Errorf("snapshot = %+v", snap)
	}
	if _, err := os.Stat(filepath.Join(f.out, "Instagram DA1b2C3 (en).srt")); err != nil {
		t.Errorf("download not written: %v", err)
	}
}

func TestRunTerminal_EmptyURLThenRetry(t *testing.T) {
	f := newFixture(t, &CLIFlags{}, nil)
	f.ui.urls = []string{"  ", reelURL}
	f.ui.cmds = []ui.Command{ui.CmdQuit}

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.ui.errors) != 1 || f.ui.errors[0] != lifecycle.MsgEmptyURL {
		t.Errorf("errors = %q", f.ui.errors)
	}
	if f.svc.Calls(stub.PathTranscribe) != 1 {
		t.Errorf("transcribe calls = %d", f.svc.Calls(stub.PathTranscribe))
	}
}

func TestRunTerminal_NewURL(t *testing.T) {
	f := newFixture(t, &CLIFlags{URL: reelURL}, nil)
	f.ui.urls = []string{"https://youtube.com/shorts/abc123"}
	f.ui.cmds = []ui.Command{ui.CmdNew, ui.CmdQuit}

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := f.app.Lifecycle().Snapshot().Result.OriginalURL; got != "https://youtube.com/shorts/abc123" {
		t.Errorf("OriginalURL = %q", got)
	}
	if f.svc.LastURL() != "https://youtube.com/shorts/abc123" {
		t.Errorf("service saw %q", f.svc.LastURL())
	}
}

func TestRunTerminal_CopyFailureAndNotCached(t *testing.T) {
	f := newFixture(t, &CLIFlags{URL: reelURL}, nil)
	f.svc.SetCache(false)
	f.clip.fail = true
	f.ui.cmds = []ui.Command{ui.CmdCopyTranscript, ui.CmdDownloadVTT, ui.CmdSave}

	if err := f.app.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"Copy failed", "Downloads unavailable: result not cached"}
	if strings.Join(f.ui.errors, "|") != strings.Join(want, "|") {
		t.Errorf("errors = %q; want %q", f.ui.errors, want)
	}
	if strings.Contains(f.ui.output(), "Download SRT") {
		t.Error("links shown for an uncached result")
	}
	// le résultat survit aux erreurs annexes
	snap := f.app.Lifecycle().Snapshot()
	if snap.Result == nil || snap.Err != "Downloads unavailable: result not cached" {
		t.Errorf("snapshot = %+v", snap)
	}
	if _, err := os.Stat(filepath.Join(f.out, "Instagram DA1b2C3 (en).txt")); err != nil {
		t.Errorf("save did not run: %v", err)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := &config.Config{APIBase: "http://a:1"}
	applyFlags(cfg, &CLIFlags{APIBase: "http://b:2", Auto: true, Refine: true, TUI: true})
	if cfg.APIBase != "http://b:2" || !cfg.AutoMode || !cfg.AutoRefine || !cfg.TUI {
		t.Errorf("cfg = %+v", cfg)
	}
}
