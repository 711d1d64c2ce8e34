package stub

import (
	"fmt"
	"strings"

	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// ToVTT produit le document WebVTT que le vrai service renvoie déjà construit.
// Le client le traite comme du texte opaque ; seul le stub le fabrique.
func ToVTT(segments []model.Segment) (string, error) {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i, s := range segments {
		start, err := vttTimestamp(s.Start)
		if err != nil {
			return "", fmt.Errorf("cue %d: %w", i+1, err)
		}
		end, err := vttTimestamp(s.End)
		if err != nil {
			return "", fmt.Errorf("cue %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", start, end, s.Text)
	}
	return b.String(), nil
}

func vttTimestamp(s model.Seconds) (string, error) {
	ts, err := s.TimestampSRT()
	if err != nil {
		return "", err
	}
	return strings.Replace(ts, ",", ".", 1), nil
}
