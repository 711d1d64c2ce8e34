package assets

import "embed"

//go:embed reelscribe.example.yaml
//go:embed templates/*tmpl
var Embedded embed.FS

// Nom de l'asset de config par défaut (chemin DANS Embedded)
const DefaultConfigAsset = "reelscribe.example.yaml"

// ResultTemplate est le nom (basename) du template d'affichage d'un résultat.
const ResultTemplate = "result.txt.tmpl"

// DefaultTemplatePaths : liste ordonnée des templates "par défaut" embarqués.
// Ce sont des chemins relatifs DANS Embedded.
var DefaultTemplatePaths = []string{
	"templates/" + ResultTemplate,
}
