package bootstrap

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// EnsureConfigPresent copie un fichier embarqué (assetPath dans fsys) vers dstPath
// si dstPath n'existe pas encore. Idempotent, ne remplace jamais un fichier existant.
// Retourne true si le fichier a été créé.
func EnsureConfigPresent(dstPath string, fsys fs.FS, assetPath string) (bool, error) {
	parent := filepath.Dir(dstPath)
	if st, err := os.Stat(parent); err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("échec test parent %s: %w", parent, err)
		}
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return false, fmt.Errorf("échec création répertoire parent %s: %w", parent, err)
		}
	} else if !st.IsDir() {
		return false, fmt.Errorf("le parent existe mais n'est pas un répertoire : %s", parent)
	}

	created, err := copyIfMissing(fsys, assetPath, dstPath)
	if err != nil {
		return false, fmt.Errorf("config %s: %w", dstPath, err)
	}
	if created {
		slog.Info("default config created", "path", dstPath)
	}
	return created, nil
}
