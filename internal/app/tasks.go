package app

import (
	"context"
	"errors"
	"strings"

	"github.com/patrickprogramme/reelscribe/internal/clipboard"
	"github.com/patrickprogramme/reelscribe/internal/export"
	"github.com/patrickprogramme/reelscribe/internal/lifecycle"
	"github.com/patrickprogramme/reelscribe/internal/render"
	"github.com/patrickprogramme/reelscribe/internal/subtitles"
	"github.com/patrickprogramme/reelscribe/internal/ui"
	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// handle exécute une commande portant sur le résultat courant.
func (a *App) handle(ctx context.Context, cmd ui.Command) {
	snap := a.life.Snapshot()
	if snap.Result == nil {
		a.ui.PrintError(ctx, "Aucun résultat. Tapez n pour saisir une URL.")
		return
	}

	switch cmd {
	case ui.CmdRefine:
		a.refine(ctx)
	case ui.CmdPrint:
		a.printResult(ctx)
	case ui.CmdCopyTranscript:
		a.copy(ctx, snap.Result.Transcript, "Transcript")
	case ui.CmdCopySRT:
		doc, err := subtitles.ToSRT(snap.Result.Subtitles)
		if err != nil {
			a.logger.Error("srt conversion failed", "error", err)
			a.life.ReportError("Invalid subtitle timing")
			a.ui.PrintError(ctx, a.life.Snapshot().Err)
			return
		}
		a.copy(ctx, doc, "SRT")
	case ui.CmdCopyVTT:
		a.copy(ctx, snap.Result.VTT, "VTT")
	case ui.CmdDownloadSRT:
		a.download(ctx, model.FormatSRT, snap.Result)
	case ui.CmdDownloadVTT:
		a.download(ctx, model.FormatVTT, snap.Result)
	case ui.CmdSave:
		a.save(ctx, snap.Result)
	}
}

// refine demande la correction du transcript et réaffiche le résultat.
func (a *App) refine(ctx context.Context) {
	a.ui.PrintInfo(ctx, "Refining")
	err := a.life.Refine(ctx)
	switch {
	case err == nil:
		a.printResult(ctx)
	case errors.Is(err, lifecycle.ErrNothingToRefine):
		a.ui.PrintInfo(ctx, "Rien à corriger.")
	case errors.Is(err, lifecycle.ErrBusy):
		a.ui.PrintInfo(ctx, "Correction déjà en cours.")
	default:
		// le transcript précédent est conservé
		a.ui.PrintError(ctx, a.life.Snapshot().Err)
	}
}

func (a *App) copy(ctx context.Context, text, label string) {
	if err := a.notifier.Copy(text, label); err != nil {
		a.logger.Debug("copy failed", "error", err)
		a.ui.PrintError(ctx, clipboard.MsgCopyFailed)
		return
	}
	a.ui.PrintInfo(ctx, "✓ "+label+" copied")
}

func (a *App) download(ctx context.Context, f model.Format, r *model.Result) {
	p, err := a.exporter.Download(ctx, f, r)
	if err != nil {
		a.logger.Warn("download failed", "format", f, "error", err)
		a.life.ReportError(export.UserMessage(err, export.MsgDownloadFailed))
		a.ui.PrintError(ctx, a.life.Snapshot().Err)
		return
	}
	a.ui.PrintInfo(ctx, "Fichier écrit : "+p)
}

func (a *App) save(ctx context.Context, r *model.Result) {
	paths, err := a.exporter.SaveAll(r, a.selection())
	for _, p := range paths {
		a.ui.PrintInfo(ctx, "Fichier écrit : "+p)
	}
	if err != nil {
		a.logger.Warn("save failed", "error", err)
		a.life.ReportError(export.UserMessage(err, export.MsgSaveFailed))
		a.ui.PrintError(ctx, a.life.Snapshot().Err)
		return
	}
	if len(paths) == 0 {
		a.ui.PrintInfo(ctx, "Aucun fichier sélectionné (save_transcript / save_srt / save_vtt).")
	}
}

// printResult affiche la fiche du résultat via le template.
func (a *App) printResult(ctx context.Context) {
	snap := a.life.Snapshot()
	if snap.Result == nil {
		return
	}
	out, err := a.renderer.RenderResult(render.NewView(snap.Result, a.client))
	if err != nil {
		a.logger.Error("render failed", "error", err)
		a.ui.PrintError(ctx, "Affichage impossible : "+err.Error())
		a.ui.PrintInfo(ctx, snap.Result.Transcript)
		return
	}
	a.ui.PrintInfo(ctx, strings.TrimRight(out, "\n"))
}
