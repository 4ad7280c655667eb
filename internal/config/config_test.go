package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func env(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "", env(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.PaymentsConfigured() {
		t.Error("payments configured without a key")
	}
}

func TestLoadMissingFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "none.yaml"), filepath.Join(dir, ".env"), env(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	yamlFile := writeFile(t, "config.yaml", `
port: "9000"
base_url: http://file.example/
db_path: /tmp/file.db
admin_password: fromfile
`)
	envFile := writeFile(t, ".env", "STRIPE_SECRET_KEY=sk_test_dotenv\nNOTICE_DB_PATH=/tmp/dotenv.db\nPORT=9100\n")

	cfg, err := Load(yamlFile, envFile, env(map[string]string{
		EnvPort:        "9200",
		EnvDevelopment: "TRUE",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Config{
		Development:     true,
		Port:            "9200",
		BaseURL:         "http://file.example",
		AdminPassword:   "fromfile",
		DBPath:          "/tmp/dotenv.db",
		StripeSecretKey: "sk_test_dotenv",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if !cfg.PaymentsConfigured() {
		t.Error("payments not configured with a key")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "port: [unterminated\n")
	if _, err := Load(path, "", env(nil)); err == nil {
		t.Fatal("expected an error for invalid YAML")
	}
}
