package ui

import (
	"fmt"
	"strings"
)

// Command est une action de la boucle interactive.
type Command int

const (
	CmdUnknown Command = iota
	CmdRefine
	CmdCopyTranscript
	CmdCopySRT
	CmdCopyVTT
	CmdDownloadSRT
	CmdDownloadVTT
	CmdSave
	CmdNew
	CmdPrint
	CmdHelp
	CmdQuit
)

// les touches sont sensibles à la casse : d = SRT, D = VTT
var commandKeys = []struct {
	key  string
	cmd  Command
	help string
}{
	{"r", CmdRefine, "corriger le transcript (IA)"},
	{"t", CmdCopyTranscript, "copier le transcript"},
	{"s", CmdCopySRT, "copier le SRT"},
	{"v", CmdCopyVTT, "copier le WebVTT"},
	{"d", CmdDownloadSRT, "télécharger le SRT du service"},
	{"D", CmdDownloadVTT, "télécharger le WebVTT du service"},
	{"w", CmdSave, "enregistrer les fichiers"},
	{"p", CmdPrint, "réafficher le résultat"},
	{"n", CmdNew, "nouvelle URL"},
	{"h", CmdHelp, "aide"},
	{"q", CmdQuit, "quitter"},
}

// ParseCommand associe une saisie à une commande. Les alias longs
// ("refine", "quit", ...) sont acceptés en minuscules.
func ParseCommand(input string) Command {
	s := strings.TrimSpace(input)
	for _, k := range commandKeys {
		if s == k.key {
			return k.cmd
		}
	}
	switch strings.ToLower(s) {
	case "refine", "fix":
		return CmdRefine
	case "new":
		return CmdNew
	case "print":
		return CmdPrint
	case "save":
		return CmdSave
	case "?", "help":
		return CmdHelp
	case "quit", "exit":
		return CmdQuit
	}
	return CmdUnknown
}

// Help retourne la liste des commandes, une par ligne.
func Help() string {
	var b strings.Builder
	for _, k := range commandKeys {
		fmt.Fprintf(&b, "  %s  %s\n", k.key, k.help)
	}
	return b.String()
}
