// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var envVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV",
	"CMS_SOURCE", "CMS_BASE_URL", "CMS_SPACE_ID", "CMS_ENVIRONMENT", "CMS_ACCESS_TOKEN", "REVALIDATE_SECRET",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"AI_PROVIDER", "AI_MODERATION",
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
	"CLAUDE_API_KEY", "CLAUDE_MODEL", "CLAUDE_BASE_URL",
	"MISTRAL_API_KEY", "MISTRAL_MODEL", "MISTRAL_BASE_URL",
	"GOOGLE_TRANSLATE_API_KEY",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET_PUBLIC", "S3_PUBLIC_URL",
	"SITE_FILE",
}

// clearEnv sets every variable Load reads to "", which envOrDefault treats
// the same as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("CMSSource", cfg.CMSSource, SourceDelivery)
	check("CMSBaseURL", cfg.CMSBaseURL, "https://cdn.contentful.com")
	check("CMSEnvironment", cfg.CMSEnvironment, "master")
	check("DBUser", cfg.DBUser, "cityhall")
	check("DBPassword", cfg.DBPassword, "changeme")
	check("DBName", cfg.DBName, "cityhall")
	check("ValkeyHost", cfg.ValkeyHost, "localhost")
	check("ValkeyPort", cfg.ValkeyPort, "6379")
	check("AIProvider", cfg.AIProvider, "gemini")
	if !cfg.AIModeration {
		t.Error("AIModeration = false, want true by default")
	}
	check("OpenAIModel", cfg.OpenAIModel, "gpt-4o")
	check("ClaudeBaseURL", cfg.ClaudeBaseURL, "https://api.anthropic.com")
	check("MistralModel", cfg.MistralModel, "mistral-large-latest")
	check("S3Region", cfg.S3Region, "fsn1")
	check("S3BucketPublic", cfg.S3BucketPublic, "cityhall-public")
	check("SiteFile", cfg.SiteFile, "")

	if cfg.HasStorage() {
		t.Error("HasStorage() = true with no S3 settings")
	}
}

// TestLoad_EnvOverrides verifies that environment variables override the
// defaults.
func TestLoad_EnvOverrides(t *testing.T) {
	overrides := map[string]string{
		"APP_PORT":                 "9090",
		"APP_ENV":                  "testing",
		"CMS_SOURCE":               "postgres",
		"CMS_SPACE_ID":             "space1",
		"CMS_ACCESS_TOKEN":         "token1",
		"REVALIDATE_SECRET":        "hook",
		"POSTGRES_HOST":            "db.example.com",
		"VALKEY_PASSWORD":          "cachepass",
		"AI_PROVIDER":              "openai",
		"OPENAI_API_KEY":           "sk-test-key",
		"GOOGLE_TRANSLATE_API_KEY": "gt-key",
		"S3_ENDPOINT":              "https://s3.example.com",
		"S3_ACCESS_KEY":            "AKIATEST",
		"SITE_FILE":                "/etc/cityhall/site.yaml",
	}
	for key, val := range overrides {
		t.Setenv(key, val)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		field, got, want string
	}{
		{"Port", cfg.Port, "9090"},
		{"Env", cfg.Env, "testing"},
		{"CMSSource", cfg.CMSSource, SourcePostgres},
		{"CMSSpaceID", cfg.CMSSpaceID, "space1"},
		{"CMSAccessToken", cfg.CMSAccessToken, "token1"},
		{"RevalidateSecret", cfg.RevalidateSecret, "hook"},
		{"DBHost", cfg.DBHost, "db.example.com"},
		{"ValkeyPassword", cfg.ValkeyPassword, "cachepass"},
		{"AIProvider", cfg.AIProvider, "openai"},
		{"OpenAIKey", cfg.OpenAIKey, "sk-test-key"},
		{"GoogleTranslateKey", cfg.GoogleTranslateKey, "gt-key"},
		{"SiteFile", cfg.SiteFile, "/etc/cityhall/site.yaml"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
	if !cfg.HasStorage() {
		t.Error("HasStorage() = false with endpoint and access key set")
	}
}

func TestLoad_Moderation(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"true", true},
		{"false", false},
	}
	for _, tt := range tests {
		clearEnv(t)
		t.Setenv("AI_MODERATION", tt.value)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.AIModeration != tt.want {
			t.Errorf("AI_MODERATION=%q: AIModeration = %v, want %v", tt.value, cfg.AIModeration, tt.want)
		}
	}
}

func TestLoad_RejectsUnknownSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("CMS_SOURCE", "sqlite")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "CMS_SOURCE") {
		t.Fatalf("Load() error = %v, want CMS_SOURCE error", err)
	}
}

// TestLoad_Production verifies the production requirements of each CMS
// source.
func TestLoad_Production(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "delivery without token",
			env:     map[string]string{"CMS_SPACE_ID": "space1"},
			wantErr: "CMS_ACCESS_TOKEN",
		},
		{
			name: "delivery with credentials",
			env:  map[string]string{"CMS_SPACE_ID": "space1", "CMS_ACCESS_TOKEN": "tok"},
		},
		{
			name:    "postgres with default password",
			env:     map[string]string{"CMS_SOURCE": "postgres", "POSTGRES_PASSWORD": "changeme"},
			wantErr: "POSTGRES_PASSWORD",
		},
		{
			name: "postgres with real password",
			env:  map[string]string{"CMS_SOURCE": "postgres", "POSTGRES_PASSWORD": "s3cur3-pr0d-p@ssw0rd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", "production")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Load() returned unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

// TestDSN verifies the PostgreSQL connection string format.
func TestDSN(t *testing.T) {
	cfg := Config{
		DBUser:     "admin",
		DBPassword: "h@ck&me!",
		DBHost:     "10.0.0.5",
		DBPort:     "5432",
		DBName:     "testdb",
	}
	want := "postgres://admin:h@ck&me!@10.0.0.5:5432/testdb?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

// TestAddr verifies the server listen address format.
func TestAddr(t *testing.T) {
	tests := []struct {
		host, port, want string
	}{
		{"0.0.0.0", "8080", "0.0.0.0:8080"},
		{"127.0.0.1", "3000", "127.0.0.1:3000"},
		{"", "8080", ":8080"},
	}
	for _, tt := range tests {
		cfg := Config{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

// TestIsDev verifies the IsDev method for various environment modes.
func TestIsDev(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"testing", false},
		{"", false},
		{"Development", false},
	}
	for _, tt := range tests {
		cfg := Config{Env: tt.env}
		if got := cfg.IsDev(); got != tt.want {
			t.Errorf("IsDev() = %v, want %v (env=%q)", got, tt.want, tt.env)
		}
	}
}

func TestLoadSite(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		site, err := LoadSite("")
		if err != nil {
			t.Fatalf("LoadSite: %v", err)
		}
		if site != DefaultSite {
			t.Errorf("got %+v, want DefaultSite", site)
		}
	})

	t.Run("file overrides non-empty fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "site.yaml")
		data := "name: Springfield\nurl: https://springfield.example.gov/\nphone: \"(555) 010-2000\"\n"
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}

		site, err := LoadSite(path)
		if err != nil {
			t.Fatalf("LoadSite: %v", err)
		}
		if site.Name != "Springfield" || site.Phone != "(555) 010-2000" {
			t.Errorf("overrides not applied: %+v", site)
		}
		if site.URL != "https://springfield.example.gov" {
			t.Errorf("URL = %q, want trailing slash trimmed", site.URL)
		}
		if site.Address != DefaultSite.Address || site.Language != DefaultSite.Language {
			t.Errorf("defaults lost: %+v", site)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSite(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("LoadSite should fail for a missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("name: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSite(path); err == nil {
			t.Error("LoadSite should fail for malformed YAML")
		}
	})
}

func TestURLFor(t *testing.T) {
	site := Site{URL: "https://springfield.example.gov/"}
	tests := []struct {
		path, want string
	}{
		{"/", "https://springfield.example.gov/"},
		{"", "https://springfield.example.gov/"},
		{"/news/road-closure", "https://springfield.example.gov/news/road-closure"},
		{"events", "https://springfield.example.gov/events"},
	}
	for _, tt := range tests {
		if got := site.URLFor(tt.path); got != tt.want {
			t.Errorf("URLFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
