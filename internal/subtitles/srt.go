package subtitles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// ToSRT sérialise les segments au format SubRip : un bloc par segment
// (numéro 1-based, "début --> fin", texte) suivi d'une ligne vide.
// - pure function : même entrée => même sortie, octet pour octet.
// - entrée vide => "" (pas une erreur).
func ToSRT(segments []model.Segment) (string, error) {
	if len(segments) == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, s := range segments {
		start, err := s.Start.TimestampSRT()
		if err != nil {
			return "", fmt.Errorf("cue %d: début: %w", i+1, err)
		}
		end, err := s.End.TimestampSRT()
		if err != nil {
			return "", fmt.Errorf("cue %d: fin: %w", i+1, err)
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n")
		b.WriteString(start)
		b.WriteString(" --> ")
		b.WriteString(end)
		b.WriteString("\n")
		b.WriteString(s.Text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
