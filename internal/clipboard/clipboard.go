package clipboard

import (
	"github.com/atotto/clipboard"
)

// ReadAll lit le contenu texte du presse-papier.
// Retourne une chaîne de caractères et une erreur éventuelle.
func ReadAll() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", err
	}
	return text, nil
}

// WriteAll écrit une chaîne de caractères dans le presse-papier.
// Le texte vide est accepté : copier un transcript vide reste une copie.
func WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// ClipboardEquals vérifie si le contenu actuel du presse-papier
// est strictement égal à la chaîne passée en paramètre.
// En cas d'erreur de lecture, retourne false et ignore l'erreur silencieusement.
func ClipboardEquals(text string) bool {
	current, err := clipboard.ReadAll()
	if err != nil {
		return false
	}
	return current == text
}

// Supported indique si un presse-papier système est utilisable
// (ex: absence de xclip/xsel sous Linux).
func Supported() bool {
	return !clipboard.Unsupported
}

// System est le Writer qui passe par le presse-papier du système.
type System struct{}

// Write implémente Writer.
func (System) Write(text string) error { return WriteAll(text) }
