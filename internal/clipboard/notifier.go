package clipboard

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultNotifyDelay est la durée d'affichage de l'accusé de copie.
const DefaultNotifyDelay = 1800 * time.Millisecond

// MsgCopyFailed est le message remonté quand l'écriture échoue.
const MsgCopyFailed = "Copy failed"

// Writer écrit du texte dans un presse-papier.
type Writer interface {
	Write(text string) error
}

// WriterFunc adapte une fonction en Writer.
type WriterFunc func(text string) error

func (f WriterFunc) Write(text string) error { return f(text) }

// ErrorReporter reçoit les erreurs à montrer à l'utilisateur.
type ErrorReporter interface {
	ReportError(msg string)
}

// Timer est le minuteur retourné par Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock abstrait la source de temps (injectable dans les tests).
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Notifier copie du texte et expose un accusé temporaire ("label").
// La dernière copie gagne : un minuteur ancien ne peut pas effacer un label plus récent.
type Notifier struct {
	writer   Writer
	reporter ErrorReporter
	clock    Clock
	delay    time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	current  string
	seq      uint64
	timer    Timer
	onChange func(label string)
	closed   bool
}

// Option configure un Notifier.
type Option func(*Notifier)

// WithClock remplace l'horloge réelle.
func WithClock(c Clock) Option { return func(n *Notifier) { n.clock = c } }

// WithDelay change la durée d'affichage.
func WithDelay(d time.Duration) Option { return func(n *Notifier) { n.delay = d } }

// WithLogger définit le logger.
func WithLogger(l *slog.Logger) Option { return func(n *Notifier) { n.logger = l } }

// NewNotifier construit un Notifier. w nil => presse-papier système.
// reporter peut être nil.
func NewNotifier(w Writer, reporter ErrorReporter, opts ...Option) *Notifier {
	if w == nil {
		w = System{}
	}
	n := &Notifier{
		writer:   w,
		reporter: reporter,
		clock:    realClock{},
		delay:    DefaultNotifyDelay,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(n)
	}
	n.logger = n.logger.With("component", "clipboard")
	return n
}

// Copy écrit text dans le presse-papier puis affiche label pendant le délai.
// En cas d'échec, "Copy failed" est remonté au reporter et l'accusé n'est pas modifié.
func (n *Notifier) Copy(text, label string) error {
	if err := n.writer.Write(text); err != nil {
		n.logger.Warn("copy failed", "label", label, "error", err)
		if n.reporter != nil {
			n.reporter.ReportError(MsgCopyFailed)
		}
		return fmt.Errorf("copie de %q impossible : %w", label, err)
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = label
	n.timer = n.clock.AfterFunc(n.delay, func() { n.expire(seq) })
	hook := n.onChange
	n.mu.Unlock()

	n.logger.Debug("copied", "label", label, "chars", len(text))
	if hook != nil {
		hook(label)
	}
	return nil
}

func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if seq != n.seq || n.closed {
		n.mu.Unlock()
		return
	}
	n.current = ""
	n.timer = nil
	hook := n.onChange
	n.mu.Unlock()

	if hook != nil {
		hook("")
	}
}

// Current retourne l'accusé affiché ("" si aucun).
func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// OnChange enregistre f, appelé (hors verrou) à chaque changement de label.
func (n *Notifier) OnChange(f func(label string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = f
}

// Close annule le minuteur en attente. Les copies suivantes écrivent toujours
// dans le presse-papier mais n'arment plus d'accusé.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.closed = true
	n.current = ""
	n.seq++
}
