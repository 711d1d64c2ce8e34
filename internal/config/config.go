package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickprogramme/reelscribe/internal/assets"
	"github.com/patrickprogramme/reelscribe/internal/fsutil"
	"gopkg.in/yaml.v3"
)

const CurrentConfigVersion = 2

// DefaultFileName est le nom du fichier de configuration à côté du binaire.
const DefaultFileName = "reelscribe.yaml"

// Variables d'environnement (prioritaires sur le fichier)
const (
	EnvAPIBase  = "REELSCRIBE_API_BASE"
	EnvLogLevel = "REELSCRIBE_LOG_LEVEL"
)

// struct pour les paramètres de configuration
type Config struct {
	// Service de transcription
	APIBase          string        `yaml:"api_base"`
	RequestTimeout   time.Duration `yaml:"request_timeout"` // 0 = pas de délai
	MaxResponseBytes int64         `yaml:"max_response_bytes"`
	Discover         bool          `yaml:"discover"` // cherche le service en mDNS au démarrage

	// Chemins
	OutputDir string `yaml:"output_dir"`

	// Organisation
	SaveInSubdir bool `yaml:"save_in_subdir"`

	// Fichiers produits
	SaveTranscript bool `yaml:"save_transcript"`
	SaveSRT        bool `yaml:"save_srt"`
	SaveVTT        bool `yaml:"save_vtt"`

	// Mode automatique
	AutoMode       bool `yaml:"auto_mode"`
	AutoRefine     bool `yaml:"auto_refine"`
	CopyTranscript bool `yaml:"copy_transcript"`

	// Interface
	TUI      bool   `yaml:"tui"`
	LogLevel string `yaml:"log_level"`

	ConfigVersion int `yaml:"config_version"`

	configFilePath string
}

// Configuration par défaut (fallback si l'asset embarqué est manquant)
func defaultConfig() *Config {
	c := &Config{}

	// Service
	c.APIBase = "http://127.0.0.1:8000"
	c.RequestTimeout = 0
	c.MaxResponseBytes = 32 << 20

	// Chemins
	c.OutputDir = "."

	// Organisation
	c.SaveInSubdir = true

	// Fichiers
	c.SaveTranscript = true
	c.SaveSRT = true
	c.SaveVTT = false

	// Mode automatique
	c.AutoMode = false
	c.AutoRefine = false
	c.CopyTranscript = true

	// Interface
	c.TUI = false
	c.LogLevel = "info"

	c.ConfigVersion = CurrentConfigVersion

	return c
}

// Load lit la config; si le fichier n'existe pas, on copie l'exemple embarqué depuis internal/assets.
// Les variables d'environnement sont appliquées après la lecture du fichier.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	// si le fichier n'existe pas -> essayer de créer à partir de l'asset embarqué
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultConfigFromEmbedded(path); err != nil {
			return nil, fmt.Errorf("échec de création du fichier de configuration par défaut : %w", err)
		}
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lecture du fichier de configuration %s impossible : %w", path, err)
	}

	// corriger les chemins Windows avec des backslashes
	data = bytes.ReplaceAll(data, []byte(`\`), []byte(`/`))

	// les champs absents conservent les valeurs par défaut
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("analyse du fichier de configuration %s impossible : %w", path, err)
	}
	cfg.configFilePath = path

	cfg.normalizeConfig()

	// gestion de version : si le fichier est plus ancien -> orchestrer la mise à jour
	if cfg.ConfigVersion < CurrentConfigVersion {
		if err := orchestrateConfigUpgrade(cfg, cfg.ConfigVersion); err != nil {
			return nil, fmt.Errorf("échec de mise à niveau de la configuration : %w", err)
		}
		cfg.normalizeConfig()
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path retourne le chemin du fichier chargé ("" si la config n'a pas été lue sur disque).
func (c *Config) Path() string {
	return c.configFilePath
}

func createDefaultConfigFromEmbedded(dstPath string) error {
	b, err := assets.Embedded.ReadFile(assets.DefaultConfigAsset)
	if err != nil {
		return fmt.Errorf("lecture du modèle de configuration embarqué impossible : %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("échec mkdir pour la configuration %s : %w", filepath.Dir(dstPath), err)
	}

	// écrire atomiquement sur disque (évite les fichiers partiels)
	if err := fsutil.WriteFileAtomic(dstPath, b, 0o644); err != nil {
		return fmt.Errorf("échec d'écriture du fichier de configuration %s : %w", dstPath, err)
	}

	fmt.Printf("info : fichier de configuration par défaut créé : %s\n", dstPath)
	return nil
}

func (c *Config) normalizeConfig() {
	c.OutputDir = filepath.Clean(strings.TrimSpace(c.OutputDir))

	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	if c.APIBase == "" {
		c.APIBase = "http://127.0.0.1:8000"
	}

	c.LogLevel = strings.TrimSpace(strings.ToLower(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = 32 << 20
	}
}

// applyEnv applique les surcharges d'environnement.
func (c *Config) applyEnv() {
	c.APIBase = strings.TrimRight(getEnv(EnvAPIBase, c.APIBase), "/")
	c.LogLevel = strings.ToLower(getEnv(EnvLogLevel, c.LogLevel))
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
