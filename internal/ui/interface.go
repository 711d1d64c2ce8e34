package ui

import (
	"context"
	"errors"
)

// ErrClosed : l'entrée standard est fermée (EOF), l'application doit s'arrêter.
var ErrClosed = errors.New("entrée fermée")

type Interface interface {
	// GetURL renvoie l'URL saisie, sans la valider (une saisie vide est
	// transmise telle quelle et refusée plus loin).
	// Implémentation terminale : priorité clipboard -> prompt
	GetURL(ctx context.Context) (string, error)

	// ReadCommand lit la prochaine commande de la boucle interactive.
	ReadCommand(ctx context.Context) (Command, error)

	PrintInfo(ctx context.Context, s string)
	PrintError(ctx context.Context, s string)
}
