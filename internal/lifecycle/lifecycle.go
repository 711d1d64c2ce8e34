// Package lifecycle porte la machine à états du résultat : soumission d'une URL,
// affinage (refine) du transcript, et un emplacement d'erreur unique.
//
// Un seul résultat est détenu à la fois. Les mutations de cet emplacement sont
// atomiques du point de vue de l'appelant : appliquées en entier sur succès,
// pas du tout sur échec. Les appels réseau se font hors verrou.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/patrickprogramme/reelscribe/internal/api"
	"github.com/patrickprogramme/reelscribe/internal/fetch"
	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// State est l'état courant de la machine.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateReady
	StateRefining // le résultat reste visible pendant l'affinage
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateReady:
		return "ready"
	case StateRefining:
		return "refining"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Messages montrés à l'utilisateur.
const (
	MsgEmptyURL           = "Enter a Reel URL"
	MsgTranscribeHTTP     = "Transcription failed"
	MsgTranscribeFallback = "Failed to transcribe."
	MsgRefineHTTP         = "Refine failed"
	MsgRefineFallback     = "Failed to refine."
)

// Erreurs exportées
var (
	ErrEmptyURL        = errors.New("url vide")
	ErrBusy            = errors.New("opération déjà en cours")
	ErrNothingToRefine = errors.New("aucun transcript à affiner")
)

// Snapshot est une vue cohérente et indépendante de l'état.
type Snapshot struct {
	State  State
	Result *model.Result // nil si aucun résultat
	Err    string        // dernier message d'erreur ("" si aucun)
}

// Busy indique qu'une opération réseau est en vol.
func (s Snapshot) Busy() bool {
	return s.State == StateSubmitting || s.State == StateRefining
}

// Lifecycle détient l'unique emplacement de résultat.
type Lifecycle struct {
	client api.Interface
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	result     *model.Result
	errMsg     string
	submitting bool
	refining   bool
	gen        uint64 // incrémenté à chaque transcribe : invalide les refine en vol
}

// New construit un Lifecycle à l'état Idle.
func New(client api.Interface, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{
		client: client,
		logger: logger.With("component", "lifecycle"),
		state:  StateIdle,
	}
}

// Snapshot retourne une copie de l'état courant.
func (l *Lifecycle) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{State: l.state, Result: l.result.Clone(), Err: l.errMsg}
}

// State retourne l'état courant.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// ReportError écrit msg dans l'emplacement d'erreur (le dernier gagne).
// Utilisé par le presse-papier et les téléchargements ; ne touche ni à l'état
// ni au résultat.
func (l *Lifecycle) ReportError(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errMsg = msg
	l.logger.Debug("error reported", "msg", msg)
}

// ClearError vide l'emplacement d'erreur.
func (l *Lifecycle) ClearError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errMsg = ""
}

// Transcribe soumet rawURL au service et installe le résultat.
// Retourne ErrBusy si un transcribe est déjà en vol (rien n'est modifié),
// ErrEmptyURL (sans appel réseau), ou l'erreur du service (l'état passe alors à Failed).
func (l *Lifecycle) Transcribe(ctx context.Context, rawURL string) error {
	u := strings.TrimSpace(rawURL)

	l.mu.Lock()
	if l.submitting {
		l.mu.Unlock()
		return ErrBusy
	}
	if u == "" {
		// pendant un refine l'état reste Refining : seule l'erreur est écrite
		if !l.refining {
			l.state = StateFailed
		}
		l.errMsg = MsgEmptyURL
		l.mu.Unlock()
		return ErrEmptyURL
	}
	l.submitting = true
	l.gen++
	gen := l.gen
	l.state = StateSubmitting
	l.result = nil
	l.errMsg = ""
	l.mu.Unlock()

	l.logger.Info("transcribe", "url", u)
	resp, err := l.client.Transcribe(ctx, u)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitting = false
	if err != nil {
		l.state = StateFailed
		l.result = nil
		l.errMsg = userMessage(err, MsgTranscribeHTTP, MsgTranscribeFallback)
		l.logger.Warn("transcribe failed", "url", u, "error", err)
		return err
	}
	l.result = &model.Result{
		Transcript:  resp.Transcript,
		Subtitles:   resp.Subtitles,
		Meta:        resp.Meta,
		VTT:         resp.VTT,
		OriginalURL: u,
	}
	l.state = StateReady
	l.logger.Info("transcribe done", "url", u, "segments", len(resp.Subtitles), "gen", gen)
	return nil
}

// Refine demande une version corrigée du transcript courant et remplace
// uniquement Transcript. Sous-titres, méta, VTT et URL d'origine sont conservés.
// Retourne ErrNothingToRefine (no-op) s'il n'y a pas de transcript, ErrBusy si
// un refine est déjà en vol.
func (l *Lifecycle) Refine(ctx context.Context) error {
	l.mu.Lock()
	if l.result == nil || l.result.Transcript == "" {
		l.mu.Unlock()
		return ErrNothingToRefine
	}
	if l.refining {
		l.mu.Unlock()
		return ErrBusy
	}
	l.refining = true
	gen := l.gen
	text := l.result.Transcript
	l.state = StateRefining
	l.errMsg = ""
	l.mu.Unlock()

	l.logger.Info("refine", "chars", len(text))
	resp, err := l.client.Refine(ctx, text)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.refining = false

	// un transcribe a remplacé (ou vidé) le résultat entre-temps : on jette la réponse
	if gen != l.gen || l.result == nil {
		l.logger.Info("refine outcome dropped, result was replaced", "gen", gen, "current", l.gen)
		if err != nil {
			return fmt.Errorf("refine obsolète: %w", err)
		}
		return nil
	}

	if err != nil {
		l.state = StateFailed
		l.errMsg = userMessage(err, MsgRefineHTTP, MsgRefineFallback)
		l.logger.Warn("refine failed", "error", err)
		return err
	}

	// copie : les Snapshot déjà distribués ne voient pas la mutation
	next := *l.result
	next.Transcript = resp.Text()
	l.result = &next
	l.state = StateReady
	l.logger.Info("refine done", "chars", len(next.Transcript))
	return nil
}

// userMessage choisit le message à afficher : le corps de la réponse HTTP s'il
// existe, sinon le message générique HTTP, sinon le message de repli (transport).
func userMessage(err error, httpMsg, fallback string) string {
	var se *fetch.StatusError
	if errors.As(err, &se) {
		if b := strings.TrimSpace(se.Body); b != "" {
			return b
		}
		return httpMsg
	}
	return fallback
}
