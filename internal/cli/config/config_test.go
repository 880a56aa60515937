package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir string, cfg *Config) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := Save(path, cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	return path
}

// TestSaveAndLoad_RoundTrip
func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := &Config{
		Servers: []Server{
			{URL: "https://api.roomly.dev", Alias: "production"},
			{URL: "http://localhost:8000", Alias: "local"},
		},
		OAuth: OAuth{
			GithubClientID: "gh-123",
			KakaoClientID:  "kk-456",
			WebURL:         "https://roomly.dev",
		},
	}

	path := writeConfig(t, dir, original)

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(loaded.Servers))
	}
	if loaded.Servers[0].URL != "https://api.roomly.dev" || loaded.Servers[0].Alias != "production" {
		t.Errorf("unexpected first server: %+v", loaded.Servers[0])
	}
	if loaded.OAuth.GithubClientID != "gh-123" || loaded.OAuth.WebURL != "https://roomly.dev" {
		t.Errorf("unexpected oauth section: %+v", loaded.OAuth)
	}
}

// TestLoad_MissingFile
func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), ConfigFileName)); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestLoad_InvalidJSON
func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

// TestFindConfigFile_WalksUpToParent verifies roomly.json is found from
// a nested working directory
func TestFindConfigFile_WalksUpToParent(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, &Config{Servers: []Server{{URL: "http://localhost:8000", Alias: "local"}}})

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(originalDir) //nolint:errcheck
	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile failed: %v", err)
	}

	// Resolve symlinks before comparing; t.TempDir may sit behind one
	wantDir, _ := filepath.EvalSymlinks(root)
	gotDir, _ := filepath.EvalSymlinks(filepath.Dir(found))
	if gotDir != wantDir {
		t.Errorf("expected config in %s, found %s", wantDir, found)
	}
}

// TestGetServerByAlias
func TestGetServerByAlias(t *testing.T) {
	cfg := &Config{Servers: []Server{
		{URL: "https://api.roomly.dev", Alias: "production"},
		{URL: "http://localhost:8000", Alias: "local"},
	}}

	server, err := cfg.GetServerByAlias("local")
	if err != nil {
		t.Fatalf("GetServerByAlias failed: %v", err)
	}
	if server.URL != "http://localhost:8000" {
		t.Errorf("unexpected server: %+v", server)
	}

	if _, err := cfg.GetServerByAlias("nope"); err == nil {
		t.Error("expected error for unknown alias")
	}
}

// TestGetDefaultServer
func TestGetDefaultServer(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.GetDefaultServer(); err == nil {
		t.Error("expected error for empty server list")
	}

	cfg.Servers = []Server{{URL: "https://api.roomly.dev", Alias: "production"}}
	server, err := cfg.GetDefaultServer()
	if err != nil {
		t.Fatalf("GetDefaultServer failed: %v", err)
	}
	if server.Alias != "production" {
		t.Errorf("unexpected server: %+v", server)
	}
}
