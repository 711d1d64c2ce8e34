// Package platform reconnaît les URLs de vidéos courtes (Instagram Reels,
// YouTube Shorts). Il sert à repérer une URL dans le presse-papier et à nommer
// les fichiers exportés ; il ne sert jamais à refuser une saisie.
package platform

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	Instagram = "instagram"
	YouTube   = "youtube"
)

var (
	igRegex = regexp.MustCompile(`(?i)^https?://(www\.|m\.)?instagram\.com/(reels?|p|tv)/([A-Za-z0-9_-]+)`)
	ytRegex = regexp.MustCompile(`(?i)^https?://(www\.|m\.)?(youtube\.com/(shorts/|watch\?v=)|youtu\.be/)([A-Za-z0-9_-]+)`)
)

// Info décrit la plateforme d'une URL. Name vide = inconnue.
type Info struct {
	Name string
	ID   string
}

// Known indique si la plateforme a été reconnue.
func (i Info) Known() bool { return i.Name != "" }

// Slug : "instagram DA1b2C3", base des noms de fichiers exportés.
func (i Info) Slug() string {
	if !i.Known() {
		return ""
	}
	if i.ID == "" {
		return i.Name
	}
	return i.Name + " " + i.ID
}

// Detect reconnaît la plateforme et l'identifiant de la vidéo.
func Detect(raw string) Info {
	s := strings.TrimSpace(raw)
	if m := igRegex.FindStringSubmatch(s); m != nil {
		return Info{Name: Instagram, ID: m[3]}
	}
	if m := ytRegex.FindStringSubmatch(s); m != nil {
		return Info{Name: YouTube, ID: m[4]}
	}
	return Info{}
}

// IsSupportedURL : URL Instagram Reel / post ou YouTube Short / vidéo.
func IsSupportedURL(s string) bool {
	return Detect(s).Known()
}

// BaseName retourne un nom lisible pour les exports : slug de la plateforme,
// sinon hôte + dernier segment du chemin, sinon "transcript".
func BaseName(raw string) string {
	if info := Detect(raw); info.Known() {
		return info.Slug()
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "transcript"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	last := ""
	if parts := strings.Split(strings.Trim(u.Path, "/"), "/"); len(parts) > 0 {
		last = parts[len(parts)-1]
	}
	if last == "" {
		return host
	}
	return host + " " + last
}
