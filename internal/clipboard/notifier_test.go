package clipboard

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock déclenche les minuteurs quand Advance fait passer leur échéance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance avance l'horloge et exécute les minuteurs échus, dans l'ordre.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

type recordingWriter struct {
	texts []string
	err   error
}

func (w *recordingWriter) Write(text string) error {
	if w.err != nil {
		return w.err
	}
	w.texts = append(w.texts, text)
	return nil
}

type recordingReporter struct{ msgs []string }

func (r *recordingReporter) ReportError(msg string) { r.msgs = append(r.msgs, msg) }

func newTestNotifier(w Writer, r ErrorReporter) (*Notifier, *fakeClock) {
	clk := &fakeClock{}
	n := NewNotifier(w, r, WithClock(clk), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return n, clk
}

func TestCopySetsLabelThenExpires(t *testing.T) {
	w := &recordingWriter{}
	n, clk := newTestNotifier(w, nil)

	if err := n.Copy("hello", "Transcript"); err != nil {
		t.Fatal(err)
	}
	if got := n.Current(); got != "Transcript" {
		t.Fatalf("Current = %q", got)
	}
	if len(w.texts) != 1 || w.texts[0] != "hello" {
		t.Fatalf("writer got %v", w.texts)
	}

	clk.Advance(1799 * time.Millisecond)
	if got := n.Current(); got != "Transcript" {
		t.Errorf("label expired early: %q", got)
	}
	clk.Advance(time.Millisecond)
	if got := n.Current(); got != "" {
		t.Errorf("label still %q after delay", got)
	}
}

func TestLastCopyWins(t *testing.T) {
	// copie A à T, copie B à T+0.5s
	n, clk := newTestNotifier(&recordingWriter{}, nil)

	_ = n.Copy("a", "Transcript")
	clk.Advance(500 * time.Millisecond)
	_ = n.Copy("b", "SRT")

	// T+2.0s : le minuteur de A (T+1.8) ne doit pas effacer B
	clk.Advance(1500 * time.Millisecond)
	if got := n.Current(); got != "SRT" {
		t.Fatalf("at T+2.0 Current = %q; want SRT", got)
	}
	// T+2.6s : > T+0.5+1.8, B a expiré
	clk.Advance(600 * time.Millisecond)
	if got := n.Current(); got != "" {
		t.Fatalf("at T+2.6 Current = %q; want empty", got)
	}
}

func TestStaleTimerCannotClearNewerLabel(t *testing.T) {
	n, clk := newTestNotifier(&recordingWriter{}, nil)

	_ = n.Copy("a", "first")
	// le rappel du premier minuteur s'exécute malgré Stop (course réelle possible)
	first := clk.timers[0]
	_ = n.Copy("b", "second")
	first.f()

	if got := n.Current(); got != "second" {
		t.Fatalf("stale expiry cleared the newer label, Current = %q", got)
	}
}

func TestCopyFailureReportsError(t *testing.T) {
	w := &recordingWriter{err: errors.New("xclip not found")}
	r := &recordingReporter{}
	n, _ := newTestNotifier(w, r)

	err := n.Copy("hello", "Transcript")
	if err == nil || !strings.Contains(err.Error(), "xclip not found") {
		t.Fatalf("Copy err = %v", err)
	}
	if len(r.msgs) != 1 || r.msgs[0] != MsgCopyFailed {
		t.Errorf("reported %v; want [%q]", r.msgs, MsgCopyFailed)
	}
	if got := n.Current(); got != "" {
		t.Errorf("failed copy must not show an acknowledgement, got %q", got)
	}
}

func TestCopyEmptyTextAllowed(t *testing.T) {
	w := &recordingWriter{}
	n, _ := newTestNotifier(w, nil)
	if err := n.Copy("", "VTT"); err != nil {
		t.Fatalf("empty copy: %v", err)
	}
	if len(w.texts) != 1 || w.texts[0] != "" {
		t.Errorf("writer got %v", w.texts)
	}
}

func TestOnChangeHook(t *testing.T) {
	n, clk := newTestNotifier(&recordingWriter{}, nil)
	var seen []string
	n.OnChange(func(label string) { seen = append(seen, label) })

	_ = n.Copy("a", "Transcript")
	_ = n.Copy("b", "SRT")
	clk.Advance(DefaultNotifyDelay)

	want := []string{"Transcript", "SRT", ""}
	if strings.Join(seen, "|") != strings.Join(want, "|") {
		t.Errorf("hook saw %q; want %q", seen, want)
	}
}

func TestCloseCancelsPendingTimer(t *testing.T) {
	n, clk := newTestNotifier(&recordingWriter{}, nil)
	var calls int
	n.OnChange(func(string) { calls++ })

	_ = n.Copy("a", "Transcript")
	n.Close()
	clk.Advance(DefaultNotifyDelay)

	if calls != 1 {
		t.Errorf("hook called %d times; timer should be cancelled by Close", calls)
	}
	if !clk.timers[0].stopped {
		t.Error("pending timer not stopped")
	}
	if n.Current() != "" {
		t.Errorf("Current after Close = %q", n.Current())
	}
}

func TestWriterFunc(t *testing.T) {
	var got string
	n, _ := newTestNotifier(WriterFunc(func(s string) error { got = s; return nil }), nil)
	_ = n.Copy("x", "X")
	if got != "x" {
		t.Errorf("WriterFunc not used, got %q", got)
	}
}
