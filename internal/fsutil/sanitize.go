package fsutil

import (
	"regexp"
	"strings"
	"unicode"
)

// limite de longueur de la chaine
const maxNameLen = 200

// invalidFileRunes définit les caractères interdits dans les noms de fichiers.
// \x00-\x1F sont les caractères de contrôle ; '#', '%', '&' et '?' viennent des URLs.
var invalidFileRunes = regexp.MustCompile(`[<>"/\\|?*#%&\x00-\x1F]`)

// multiSpace détecte les séquences de plusieurs espaces pour les réduire à un seul.
var multiSpace = regexp.MustCompile(`\s+`)

// SanitizeFilename nettoie une chaîne de caractères pour en faire un nom de fichier valide.
// Étapes :
// - Remplace ":" par "-"
// - Remplace les autres caractères interdits par " "
// - Réduit les espaces, supprime les points terminaux
// - Limite la longueur (en runes, pour ne pas couper un caractère UTF-8)
// - "untitled" si la chaîne est vide
func SanitizeFilename(name string) string {
	if name == "" {
		return "untitled"
	}

	name = strings.ReplaceAll(name, ":", "-")
	clean := invalidFileRunes.ReplaceAllString(name, " ")
	clean = strings.TrimSpace(clean)
	clean = multiSpace.ReplaceAllString(clean, " ")
	clean = strings.TrimRight(clean, ".")

	if clean == "" {
		return "untitled"
	}

	if rs := []rune(clean); len(rs) > maxNameLen {
		clean = strings.TrimSpace(string(rs[:maxNameLen]))
	}

	return CapitalizeFirst(clean)
}

// CapitalizeFirst met en majuscule le premier caractère (rune) de s.
// Ne touche pas au reste de la chaîne. Vide -> retourne "".
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	rs := []rune(s)
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}
