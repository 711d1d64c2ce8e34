package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_CreatesDefaultFromEmbedded(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	t.Setenv(EnvLogLevel, "")
	p := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.APIBase != "http://127.0.0.1:8000" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %s; want no timeout by default", cfg.RequestTimeout)
	}
	if !cfg.SaveTranscript || !cfg.SaveSRT || cfg.SaveVTT {
		t.Errorf("save flags = %v/%v/%v", cfg.SaveTranscript, cfg.SaveSRT, cfg.SaveVTT)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Errorf("ConfigVersion = %d", cfg.ConfigVersion)
	}
	if cfg.Path() != p {
		t.Errorf("Path = %q", cfg.Path())
	}
}

func TestLoad_ValuesAndDefaults(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	t.Setenv(EnvLogLevel, "")
	p := writeConfig(t, `
api_base: "https://transcribe.example.com/"
request_timeout: 45s
output_dir: 'out\sub'
tui: true
discover: true
log_level: DEBUG
config_version: 2
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBase != "https://transcribe.example.com" {
		t.Errorf("trailing slash kept: %q", cfg.APIBase)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.OutputDir != filepath.Clean("out/sub") {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if !cfg.TUI || !cfg.Discover || cfg.LogLevel != "debug" {
		t.Errorf("TUI=%v Discover=%v LogLevel=%q", cfg.TUI, cfg.Discover, cfg.LogLevel)
	}
	// absent du fichier : valeur par défaut
	if !cfg.SaveInSubdir || cfg.MaxResponseBytes != 32<<20 {
		t.Errorf("defaults lost: subdir=%v max=%d", cfg.SaveInSubdir, cfg.MaxResponseBytes)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIBase, "http://10.0.0.5:9000/")
	t.Setenv(EnvLogLevel, "WARN")
	p := writeConfig(t, "api_base: http://file:8000\nconfig_version: 2\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBase != "http://10.0.0.5:9000" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	t.Setenv(EnvLogLevel, "")
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "api_base: [oops\n", "analyse"},
		{"bad scheme", "api_base: ftp://host\nconfig_version: 2\n", "api_base"},
		{"negative timeout", "request_timeout: -1s\nconfig_version: 2\n", "request_timeout"},
		{"unknown level", "log_level: loud\nconfig_version: 2\n", "log_level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v; want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_MigratesOldVersion(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	t.Setenv(EnvLogLevel, "")
	p := writeConfig(t, "save_srt: false\nconfig_version: 1\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion || !cfg.SaveSRT {
		t.Errorf("not migrated: version=%d save_srt=%v", cfg.ConfigVersion, cfg.SaveSRT)
	}

	// sauvegarde + fichier réécrit
	backups, _ := filepath.Glob(p + ".bak.*")
	if len(backups) != 1 {
		t.Fatalf("backups = %v", backups)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "config_version: 2") {
		t.Errorf("migrated file not rewritten:\n%s", b)
	}

	// rechargement : la durée sérialisée doit se relire
	if _, err := Load(p); err != nil {
		t.Fatalf("reload migrated file: %v", err)
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()

	cfg.OutputDir = dir
	if w, err := cfg.ValidateOutputDir(); err != nil || len(w) != 0 {
		t.Errorf("existing dir: w=%v err=%v", w, err)
	}

	cfg.OutputDir = filepath.Join(dir, "later")
	if w, err := cfg.ValidateOutputDir(); err != nil || len(w) != 1 {
		t.Errorf("missing dir: w=%v err=%v", w, err)
	}

	file := filepath.Join(dir, "f")
	_ = os.WriteFile(file, nil, 0o644)
	cfg.OutputDir = file
	if _, err := cfg.ValidateOutputDir(); err == nil {
		t.Error("a file is not a valid output_dir")
	}
}
