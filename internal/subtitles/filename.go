package subtitles

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/patrickprogramme/reelscribe/internal/fsutil"
	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// Filename compose le nom de fichier pour un export. Exemple :
// "Instagram DA1b2C3 (en).srt"
func Filename(base, lang string, f model.Format) string {
	base = fsutil.SanitizeFilename(strings.TrimSpace(base))
	if strings.TrimSpace(base) == "" {
		// fallback de sécurité si sanitize rend la chaîne vide
		base = "transcript"
	}

	// langue (fallback "und")
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = "und"
	}

	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(string(f))), ".")
	if ext == "" {
		ext = string(model.FormatTXT)
	}

	filename := fmt.Sprintf("%s (%s).%s", base, lang, ext)
	return filepath.Base(filename)
}
