package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

var testFS = fstest.MapFS{
	"app.example.yaml":     {Data: []byte("api_base: x\n")},
	"templates/a.txt.tmpl": {Data: []byte("A")},
	"templates/b.txt.tmpl": {Data: []byte("B")},
}

func TestEnsureConfigPresent(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "sub", "app.yaml")

	created, err := EnsureConfigPresent(dst, testFS, "app.example.yaml")
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "api_base: x\n" {
		t.Errorf("content = %q", b)
	}

	// jamais écrasé
	if err := os.WriteFile(dst, []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}
	created, err = EnsureConfigPresent(dst, testFS, "app.example.yaml")
	if err != nil || created {
		t.Fatalf("second call: created=%v err=%v", created, err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "mine" {
		t.Errorf("existing config overwritten: %q", b)
	}
}

func TestEnsureConfigPresent_MissingAsset(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "app.yaml")
	if _, err := EnsureConfigPresent(dst, testFS, "nope.yaml"); err == nil {
		t.Fatal("expected error for a missing asset")
	}
}

func TestEnsureTemplatesPresent(t *testing.T) {
	tplDir := filepath.Join(t.TempDir(), "templates")
	srcs := []string{"templates/a.txt.tmpl", "templates/b.txt.tmpl"}

	written, err := EnsureTemplatesPresent(tplDir, testFS, srcs)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Fatalf("written = %v", written)
	}

	// un fichier modifié par l'utilisateur et un fichier supprimé
	if err := os.WriteFile(filepath.Join(tplDir, "a.txt.tmpl"), []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(tplDir, "b.txt.tmpl")); err != nil {
		t.Fatal(err)
	}

	written, err = EnsureTemplatesPresent(tplDir, testFS, srcs)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "b.txt.tmpl" {
		t.Errorf("second pass wrote %v; want only b.txt.tmpl", written)
	}
	if b, _ := os.ReadFile(filepath.Join(tplDir, "a.txt.tmpl")); string(b) != "edited" {
		t.Errorf("user template overwritten: %q", b)
	}
}

func TestEnsureTemplatesPresent_MissingParent(t *testing.T) {
	tplDir := filepath.Join(t.TempDir(), "missing", "templates")
	if _, err := EnsureTemplatesPresent(tplDir, testFS, nil); err == nil {
		t.Fatal("expected error when the parent directory does not exist")
	}
}
