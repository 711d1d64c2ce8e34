// Package tui est l'interface plein écran (bubbletea) : même cycle de vie et
// mêmes opérations que la boucle terminale, avec spinner et accusé de copie.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run lance le programme jusqu'à ce que l'utilisateur quitte ou que ctx soit annulé.
func Run(ctx context.Context, deps Deps, initialURL string) error {
	m := NewModel(ctx, deps, initialURL)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// l'accusé de copie expire sur le minuteur du notifier : on le relaie au programme
	if deps.Notifier != nil {
		deps.Notifier.OnChange(func(label string) { p.Send(toastMsg{label: label}) })
		defer deps.Notifier.OnChange(nil)
	}

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
