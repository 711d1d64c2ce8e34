package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/patrickprogramme/reelscribe/internal/api"
	"github.com/patrickprogramme/reelscribe/internal/clipboard"
	"github.com/patrickprogramme/reelscribe/internal/config"
	"github.com/patrickprogramme/reelscribe/internal/export"
	"github.com/patrickprogramme/reelscribe/internal/lifecycle"
	"github.com/patrickprogramme/reelscribe/internal/render"
	"github.com/patrickprogramme/reelscribe/internal/tui"
	"github.com/patrickprogramme/reelscribe/internal/ui"
)

// ErrAutoFailed : le mode automatique n'a pas abouti (code de sortie non nul).
var ErrAutoFailed = errors.New("mode automatique en échec")

// CLIFlags contient les information venant des flags de l'app
type CLIFlags struct {
	ConfigPath string
	URL        string
	APIBase    string
	Auto       bool
	Refine     bool
	TUI        bool
	Discover   bool
}

// App orchestre les différentes dépendances (UI, service, presse-papier, FS...)
type App struct {
	cfg      *config.Config
	ui       ui.Interface
	flags    *CLIFlags
	client   *api.Client
	life     *lifecycle.Lifecycle
	notifier *clipboard.Notifier
	exporter *export.Exporter
	renderer *render.Renderer
	logger   *slog.Logger
}

// Option permet d'injecter des implémentations de test.
type Option func(*appOptions)

type appOptions struct {
	writer clipboard.Writer
	logger *slog.Logger
	clock  clipboard.Clock
}

// WithClipboard remplace le presse-papier système.
func WithClipboard(w clipboard.Writer) Option { return func(o *appOptions) { o.writer = w } }

// WithLogger définit le logger de l'application.
func WithLogger(l *slog.Logger) Option { return func(o *appOptions) { o.logger = l } }

// WithClock remplace l'horloge du notifier.
func WithClock(c clipboard.Clock) Option { return func(o *appOptions) { o.clock = c } }

// New construit l'application en initialisant les dépendances par défaut.
// Les flags (-api, -auto, -refine, -tui) sont appliqués par-dessus la config.
func New(cfg *config.Config, uiClient ui.Interface, flags *CLIFlags, renderer *render.Renderer, opts ...Option) *App {
	o := appOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if flags == nil {
		flags = &CLIFlags{}
	}
	applyFlags(cfg, flags)

	client := api.NewClient(api.Config{
		BaseURL:  cfg.APIBase,
		Timeout:  cfg.RequestTimeout,
		MaxBytes: cfg.MaxResponseBytes,
		Logger:   o.logger,
	})
	life := lifecycle.New(client, o.logger)

	nopts := []clipboard.Option{clipboard.WithLogger(o.logger)}
	if o.clock != nil {
		nopts = append(nopts, clipboard.WithClock(o.clock))
	}

	return &App{
		cfg:      cfg,
		ui:       uiClient,
		flags:    flags,
		client:   client,
		life:     life,
		notifier: clipboard.NewNotifier(o.writer, life, nopts...),
		exporter: export.New(client, cfg.OutputDir, cfg.SaveInSubdir, o.logger),
		renderer: renderer,
		logger:   o.logger,
	}
}

func applyFlags(cfg *config.Config, f *CLIFlags) {
	if f.APIBase != "" {
		cfg.APIBase = f.APIBase
	}
	if f.Auto {
		cfg.AutoMode = true
	}
	if f.Refine {
		cfg.AutoRefine = true
	}
	if f.TUI {
		cfg.TUI = true
	}
	if f.Discover {
		cfg.Discover = true
	}
}

// Lifecycle expose l'état courant (tests, intégrations).
func (a *App) Lifecycle() *lifecycle.Lifecycle { return a.life }

// Run exécute le mode choisi : automatique, plein écran ou boucle terminale.
func (a *App) Run(ctx context.Context) error {
	defer a.notifier.Close()

	a.logger.Info("starting", "api_base", a.client.BaseURL(), "auto", a.cfg.AutoMode, "tui", a.cfg.TUI)

	switch {
	case a.cfg.AutoMode:
		return a.runAuto(ctx)
	case a.cfg.TUI:
		return tui.Run(ctx, tui.Deps{
			Life:     a.life,
			Notifier: a.notifier,
			Exporter: a.exporter,
			Renderer: a.renderer,
			Linker:   a.client,
			Save:     a.selection(),
			Logger:   a.logger,
		}, a.flags.URL)
	default:
		return a.runTerminal(ctx)
	}
}

func (a *App) selection() export.Selection {
	return export.Selection{
		Transcript: a.cfg.SaveTranscript,
		SRT:        a.cfg.SaveSRT,
		VTT:        a.cfg.SaveVTT,
	}
}

// runAuto : transcrit l'URL, affine si demandé, enregistre et copie, puis rend la main.
func (a *App) runAuto(ctx context.Context) error {
	url := a.flags.URL
	if url == "" {
		u, err := a.ui.GetURL(ctx)
		if err != nil {
			return fmt.Errorf("get url: %w", err)
		}
		url = u
	}

	if err := a.life.Transcribe(ctx, url); err != nil {
		a.ui.PrintError(ctx, a.life.Snapshot().Err)
		return fmt.Errorf("%w: transcribe: %v", ErrAutoFailed, err)
	}

	if a.cfg.AutoRefine {
		if err := a.life.Refine(ctx); err != nil && !errors.Is(err, lifecycle.ErrNothingToRefine) {
			// le transcript brut reste utilisable
			a.ui.PrintError(ctx, a.life.Snapshot().Err)
		}
	}

	snap := a.life.Snapshot()
	a.ui.PrintInfo(ctx, snap.Result.Pretty())

	paths, err := a.exporter.SaveAll(snap.Result, a.selection())
	for _, p := range paths {
		a.ui.PrintInfo(ctx, "Fichier écrit : "+p)
	}
	if err != nil {
		a.ui.PrintError(ctx, export.MsgSaveFailed)
		return fmt.Errorf("%w: save: %v", ErrAutoFailed, err)
	}

	if a.cfg.CopyTranscript {
		if err := a.notifier.Copy(snap.Result.Transcript, "Transcript"); err != nil {
			// non fatal : les fichiers sont écrits
			a.ui.PrintError(ctx, clipboard.MsgCopyFailed)
		} else {
			a.ui.PrintInfo(ctx, "✓ Transcript copied")
		}
	}
	return nil
}

// runTerminal : URL (flag > presse-papier > prompt), puis boucle de commandes.
func (a *App) runTerminal(ctx context.Context) error {
	url := a.flags.URL
	for {
		if url == "" {
			u, err := a.ui.GetURL(ctx)
			if errors.Is(err, ui.ErrClosed) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get url: %w", err)
			}
			url = u
		}

		a.ui.PrintInfo(ctx, "Transcribing...")
		err := a.life.Transcribe(ctx, url)
		url = ""
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.ui.PrintError(ctx, a.life.Snapshot().Err)
			continue
		}
		a.printResult(ctx)

		if a.cfg.AutoRefine {
			a.refine(ctx)
		}

		quit, err := a.commandLoop(ctx)
		if err != nil || quit {
			return err
		}
	}
}

// commandLoop traite les commandes jusqu'à "n" (retourne false) ou "q" (true).
func (a *App) commandLoop(ctx context.Context) (bool, error) {
	for {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		cmd, err := a.ui.ReadCommand(ctx)
		if errors.Is(err, ui.ErrClosed) {
			return true, nil
		}
		if err != nil {
			return true, err
		}

		switch cmd {
		case ui.CmdQuit:
			return true, nil
		case ui.CmdNew:
			return false, nil
		case ui.CmdHelp:
			a.ui.PrintInfo(ctx, ui.Help())
		case ui.CmdUnknown:
			a.ui.PrintInfo(ctx, "Commande inconnue.\n"+ui.Help())
		default:
			a.handle(ctx, cmd)
		}
	}
}
