package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/patrickprogramme/reelscribe/internal/app"
	"github.com/patrickprogramme/reelscribe/internal/assets"
	"github.com/patrickprogramme/reelscribe/internal/bootstrap"
	"github.com/patrickprogramme/reelscribe/internal/config"
	"github.com/patrickprogramme/reelscribe/internal/discovery"
	"github.com/patrickprogramme/reelscribe/internal/render"
	"github.com/patrickprogramme/reelscribe/internal/ui"
)

func main() {
	flags := parseFlags()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// déterminer exePath/binDir
	binDir := "."
	exePath, err := os.Executable()
	if err != nil {
		slog.Warn("impossible de déterminer le chemin de l'exécutable", "error", err)
		exePath = filepath.Join(binDir, "reelscribe")
	} else {
		binDir = filepath.Dir(exePath)
	}

	// emplacement config par défaut
	if flags.ConfigPath == config.DefaultFileName || flags.ConfigPath == "" {
		flags.ConfigPath = filepath.Join(binDir, config.DefaultFileName)
	}

	if _, err := bootstrap.EnsureConfigPresent(flags.ConfigPath, assets.Embedded, assets.DefaultConfigAsset); err != nil {
		slog.Warn("ensure config present", "error", err)
	}
	if _, err := bootstrap.EnsureTemplatesPresent(filepath.Join(binDir, "templates"), assets.Embedded, assets.DefaultTemplatePaths); err != nil {
		slog.Warn("ensure templates present", "error", err)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		slog.Error("config load", "error", err)
		os.Exit(1)
	}
	if warnings, err := cfg.ValidateOutputDir(); err != nil {
		slog.Error("output_dir", "error", err)
		os.Exit(1)
	} else {
		for _, w := range warnings {
			slog.Warn(w)
		}
	}

	logger, closeLog := newLogger(cfg, flags, binDir)
	defer closeLog()
	slog.SetDefault(logger)

	renderer, err := render.DefaultRenderer(exePath)
	if err != nil {
		slog.Error("impossible de construire le renderer", "error", err)
		os.Exit(1)
	}

	// root context qui s'annule sur SIGINT / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// -api a priorité sur la découverte mDNS
	if (cfg.Discover || flags.Discover) && flags.APIBase == "" {
		if base, err := discovery.Lookup(ctx, discovery.DefaultTimeout); err != nil {
			logger.Warn("découverte mDNS", "error", err, "api_base", cfg.APIBase)
		} else {
			logger.Info("service trouvé sur le réseau local", "api_base", base)
			flags.APIBase = base
		}
	}

	a := app.New(cfg, ui.NewTerminal(), flags, renderer, app.WithLogger(logger))
	if err := a.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(os.Stderr, "erreur :", err)
		closeLog()
		os.Exit(1)
	}
}

func parseFlags() *app.CLIFlags {
	f := &app.CLIFlags{}
	flag.StringVar(&f.ConfigPath, "config", config.DefaultFileName, "path to config file")
	flag.StringVar(&f.URL, "url", "", "Instagram Reel / YouTube Short URL (optional)")
	flag.StringVar(&f.APIBase, "api", "", "transcription service base URL (overrides api_base)")
	flag.BoolVar(&f.Auto, "auto", false, "exécution automatique sans interaction")
	flag.BoolVar(&f.Refine, "refine", false, "corriger le transcript après la transcription")
	flag.BoolVar(&f.TUI, "tui", false, "interface plein écran")
	flag.BoolVar(&f.Discover, "discover", false, "chercher le service sur le réseau local (mDNS)")
	flag.Parse()
	return f
}

// newLogger construit le logger final. En mode plein écran les logs vont
// dans un fichier à côté du binaire pour ne pas casser l'affichage.
func newLogger(cfg *config.Config, flags *app.CLIFlags, binDir string) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if !(cfg.TUI || flags.TUI) || cfg.AutoMode || flags.Auto {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}
	}
	f, err := os.OpenFile(filepath.Join(binDir, "reelscribe.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, opts)), func() {}
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { _ = f.Close() }
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
