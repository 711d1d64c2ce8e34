package bootstrap

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/patrickprogramme/reelscribe/internal/fsutil"
)

// EnsureTemplatesPresent s'assure que les templates listés existent sur disque,
// dans tplDir, pour que l'utilisateur puisse les modifier.
//
// - tplDir  : dossier destination sur disque (ex: "<binDir>/templates")
// - fsys    : embed.FS (ou autre fs.FS) contenant les ressources embarquées
// - srcFiles: chemins DANS fsys (ex: "templates/result.txt.tmpl")
//
// Crée tplDir au besoin, copie les fichiers manquants, ne remplace jamais un
// fichier existant. Retourne la liste des fichiers écrits.
func EnsureTemplatesPresent(tplDir string, fsys fs.FS, srcFiles []string) ([]string, error) {
	parent := filepath.Dir(tplDir)
	if st, err := os.Stat(parent); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("le répertoire parent n'existe pas : %s", parent)
		}
		return nil, fmt.Errorf("échec lors du test du répertoire parent %s : %w", parent, err)
	} else if !st.IsDir() {
		return nil, fmt.Errorf("le parent existe mais n'est pas un répertoire : %s", parent)
	}

	if err := os.MkdirAll(tplDir, 0o755); err != nil {
		return nil, fmt.Errorf("échec de création du répertoire de templates %s : %w", tplDir, err)
	}

	var written []string
	for _, src := range srcFiles {
		dest := filepath.Join(tplDir, filepath.Base(src))
		ok, err := copyIfMissing(fsys, src, dest)
		if err != nil {
			return written, err
		}
		if ok {
			written = append(written, dest)
		}
	}
	if len(written) > 0 {
		slog.Info("templates written", "dir", tplDir, "count", len(written))
	}
	return written, nil
}

// copyIfMissing copie src (dans fsys) vers dest si dest n'existe pas.
// Retourne true si le fichier a été écrit.
func copyIfMissing(fsys fs.FS, src, dest string) (bool, error) {
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("échec lors du test du fichier %s : %w", dest, err)
	}
	data, err := fs.ReadFile(fsys, filepath.ToSlash(src))
	if err != nil {
		return false, fmt.Errorf("fichier embarqué introuvable %s : %w", src, err)
	}
	if err := fsutil.WriteFileAtomic(dest, data, 0o644); err != nil {
		return false, fmt.Errorf("échec d'écriture de %s : %w", dest, err)
	}
	return true, nil
}
