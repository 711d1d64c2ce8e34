package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTimestamp : offset négatif, NaN ou infini.
var ErrInvalidTimestamp = errors.New("timestamp invalide")

// Seconds est un offset en secondes (fractionnaire) depuis le début de la vidéo.
type Seconds float64

// TimestampSRT formate Seconds en "HH:MM:SS,mmm" (2 chiffres par composant, 3 pour les ms).
// Les millisecondes sont tronquées, jamais arrondies.
// Exemple : 0 -> "00:00:00,000", 3661.234 -> "01:01:01,234".
func (s Seconds) TimestampSRT() (string, error) {
	v := float64(s)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidTimestamp, v)
	}
	whole, ms, err := splitDecimal(v)
	if err != nil {
		return "", err
	}
	h := whole / 3600
	m := (whole % 3600) / 60
	sec := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, sec, ms), nil
}

// splitDecimal découpe v en secondes entières + millisecondes tronquées.
// On travaille sur la représentation décimale la plus courte de v : 3661.234
// est stocké 3661.23399999… en binaire, la troncature directe donnerait 233.
func splitDecimal(v float64) (int64, int64, error) {
	str := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, fracPart, _ := strings.Cut(str, ".")
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v hors limites", ErrInvalidTimestamp, v)
	}
	fracPart = (fracPart + "000")[:3]
	ms, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidTimestamp, v)
	}
	return whole, ms, nil
}

// constantes pour les formats de fichiers
type Format string

const (
	FormatTXT Format = "txt"
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// du format en chaine à la constante de type Format, return une erreur si format inconnu
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt":
		return FormatTXT, nil
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("format demandé inconnu: %s", s)
	}
}

func (f Format) IsSubtitle() bool {
	return f == FormatSRT || f == FormatVTT
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) String() string {
	return string(f)
}
