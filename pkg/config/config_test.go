// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relmigrate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestLoad_SingleAppResolvedWithoutFlag(t *testing.T) {
	path := writeConfig(t, `
connections:
  default: "sqlite://test.db"
apps:
  - blog
registry: registry.yaml
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	app, err := cfg.ResolveApp("")
	if err != nil {
		t.Fatalf("ResolveApp: %v", err)
	}
	if app != "blog" {
		t.Fatalf("ResolveApp = %q, want blog", app)
	}
}

func TestLoad_MultipleAppsRequireFlag(t *testing.T) {
	path := writeConfig(t, `
connections:
  default: "sqlite://test.db"
apps:
  - blog
  - shop
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.ResolveApp(""); err == nil {
		t.Fatalf("expected ResolveApp to require --app with multiple apps declared")
	}
	app, err := cfg.ResolveApp("shop")
	if err != nil {
		t.Fatalf("ResolveApp(shop): %v", err)
	}
	if app != "shop" {
		t.Fatalf("ResolveApp(shop) = %q, want shop", app)
	}
}

func TestLoad_DottedSubPath(t *testing.T) {
	path := writeConfig(t, `
environments:
  production:
    connections:
      default: "postgres://prod/db"
    apps:
      - blog
`)

	cfg, err := Load(path, "environments.production")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Connections) != 1 || cfg.Connections["default"] != "postgres://prod/db" {
		t.Fatalf("unexpected connections: %#v", cfg.Connections)
	}
}

func TestLoad_MissingRequiredFieldFails(t *testing.T) {
	path := writeConfig(t, `
apps:
  - blog
`)

	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected Load to reject a config missing connections")
	}
}
