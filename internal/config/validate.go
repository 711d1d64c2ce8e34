package config

import (
	"fmt"
	"net/url"
	"os"
)

// Validate vérifie les valeurs qui rendraient l'exécution impossible.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config nil")
	}
	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base invalide %q : attendu http(s)://hôte[:port]", c.APIBase)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout négatif : %s", c.RequestTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level inconnu %q (debug|info|warn|error)", c.LogLevel)
	}
	return nil
}

// ValidateOutputDir vérifie que output_dir est un répertoire existant ou créable.
// Retourne des warnings (non-fataux) et une erreur si c'est critique.
func (c *Config) ValidateOutputDir() (warnings []string, err error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	st, serr := os.Stat(c.OutputDir)
	if serr != nil {
		if os.IsNotExist(serr) {
			warnings = append(warnings, fmt.Sprintf("output_dir n'existe pas encore, il sera créé : %s", c.OutputDir))
			return warnings, nil
		}
		return warnings, fmt.Errorf("impossible d'accéder à output_dir %s : %w", c.OutputDir, serr)
	}
	if !st.IsDir() {
		return warnings, fmt.Errorf("output_dir n'est pas un répertoire : %s", c.OutputDir)
	}
	return warnings, nil
}
