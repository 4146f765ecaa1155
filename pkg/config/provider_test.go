package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
server:
  listen-addr: 127.0.0.1
  port: 9090
  sweep-workers: 2
parameter-sets:
  - name: tundra
    description: Coastal tundra site
    snow:
      conductivity: 0.15
      heat-capacity: 500000
      depth: 0.3
    organic:
      conductivity-frozen: 0.25
      conductivity-thawed: 0.1
      heat-capacity-frozen: 1000000
      heat-capacity-thawed: 2000000
      thickness: 0.25
    mineral:
      conductivity-frozen: 1.8
      conductivity-thawed: 1.0
      heat-capacity-frozen: 2000000
      heat-capacity-thawed: 3000000
      porosity: 0.45
    forcing:
      mean-air-temp: -2
      air-temp-amplitude: 17
`

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestYAMLProviderLoad(t *testing.T) {
	provider := NewYAMLProvider(writeTempFile(t, "config.yaml", testYAML))
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddr != "127.0.0.1" || cfg.Server.Port != 9090 || cfg.Server.SweepWorkers != 2 {
		t.Errorf("Server = %+v, expected 127.0.0.1:9090 with 2 workers", cfg.Server)
	}

	set, err := provider.GetSet("tundra")
	if err != nil {
		t.Fatalf("GetSet(tundra) error = %v", err)
	}

	expected := DefaultParameterSet()
	expected.Name = "tundra"
	expected.Description = "Coastal tundra site"
	if *set != expected {
		t.Errorf("GetSet(tundra) = %+v, expected %+v", *set, expected)
	}

	if set.Inputs() != DefaultParameterSet().Inputs() {
		t.Errorf("Inputs() = %+v, expected the reference inputs", set.Inputs())
	}
}

func TestYAMLProviderReadOnly(t *testing.T) {
	provider := NewYAMLProvider(writeTempFile(t, "config.yaml", testYAML))

	if !provider.IsReadOnly() {
		t.Error("expected YAML provider to be read-only")
	}

	set := DefaultParameterSet()
	if err := provider.SaveSet(&set); !errors.Is(err, ErrReadOnly) {
		t.Errorf("SaveSet() error = %v, expected ErrReadOnly", err)
	}
	if err := provider.DeleteSet("tundra"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("DeleteSet() error = %v, expected ErrReadOnly", err)
	}
	if _, err := provider.GetSet("missing"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("GetSet(missing) error = %v, expected ErrSetNotFound", err)
	}
}

func TestYAMLProviderRejectsBadSets(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name: "duplicate names",
			contents: `
parameter-sets:
  - name: a
  - name: a
`,
		},
		{
			name: "invalid name",
			contents: `
parameter-sets:
  - name: "../etc"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewYAMLProvider(writeTempFile(t, "config.yaml", tt.contents))
			if _, err := provider.LoadConfig(); err == nil {
				t.Error("expected LoadConfig() to fail")
			}
		})
	}
}

func TestSQLiteProviderSets(t *testing.T) {
	provider, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error = %v", err)
	}
	defer provider.Close()

	if provider.IsReadOnly() {
		t.Error("expected SQLite provider to be writable")
	}

	set := DefaultParameterSet()
	if err := provider.SaveSet(&set); err != nil {
		t.Fatalf("SaveSet() error = %v", err)
	}
	if set.ID == "" {
		t.Fatal("expected SaveSet() to assign an ID")
	}
	firstID := set.ID

	got, err := provider.GetSet("default")
	if err != nil {
		t.Fatalf("GetSet() error = %v", err)
	}
	if *got != set {
		t.Errorf("GetSet() = %+v, expected %+v", *got, set)
	}

	// Saving under the same name replaces the stored set and keeps its ID
	set.ID = ""
	set.Snow.Depth = 1.0
	set.Description = ""
	if err := provider.SaveSet(&set); err != nil {
		t.Fatalf("second SaveSet() error = %v", err)
	}
	if set.ID != firstID {
		t.Errorf("ID = %s after update, expected %s", set.ID, firstID)
	}

	got, err = provider.GetSet("default")
	if err != nil {
		t.Fatalf("GetSet() after update error = %v", err)
	}
	if got.Snow.Depth != 1.0 || got.Description != "" {
		t.Errorf("GetSet() after update = %+v", *got)
	}

	other := DefaultParameterSet()
	other.Name = "alpine"
	if err := provider.SaveSet(&other); err != nil {
		t.Fatalf("SaveSet(alpine) error = %v", err)
	}

	sets, err := provider.ListSets()
	if err != nil {
		t.Fatalf("ListSets() error = %v", err)
	}
	if len(sets) != 2 || sets[0].Name != "alpine" || sets[1].Name != "default" {
		t.Errorf("ListSets() = %+v, expected alpine and default in name order", sets)
	}

	if err := provider.DeleteSet("alpine"); err != nil {
		t.Fatalf("DeleteSet() error = %v", err)
	}
	if err := provider.DeleteSet("alpine"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("second DeleteSet() error = %v, expected ErrSetNotFound", err)
	}
	if _, err := provider.GetSet("alpine"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("GetSet() after delete error = %v, expected ErrSetNotFound", err)
	}
}

func TestSQLiteProviderServerConfig(t *testing.T) {
	provider, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error = %v", err)
	}
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server != (ServerData{}) || len(cfg.ParameterSets) != 0 {
		t.Errorf("LoadConfig() on empty database = %+v", cfg)
	}

	server := ServerData{ListenAddr: "localhost", Port: 8181, SweepWorkers: 8, MaxSweepSize: 500}
	if err := provider.SaveServerConfig(&server); err != nil {
		t.Fatalf("SaveServerConfig() error = %v", err)
	}

	cfg, err = provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server != server {
		t.Errorf("Server = %+v, expected %+v", cfg.Server, server)
	}
}

func TestBuiltinSetProvider(t *testing.T) {
	sqlite, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error = %v", err)
	}
	provider := NewBuiltinSetProvider(sqlite)
	defer provider.Close()

	sets, err := provider.ListSets()
	if err != nil {
		t.Fatalf("ListSets() error = %v", err)
	}
	if len(sets) != 1 || sets[0] != DefaultParameterSet() {
		t.Fatalf("ListSets() on empty store = %+v, expected only the reference set", sets)
	}

	// A stored set named default shadows the reference set
	shadow := DefaultParameterSet()
	shadow.Forcing.MeanAirTemp = -5
	if err := provider.SaveSet(&shadow); err != nil {
		t.Fatalf("SaveSet() error = %v", err)
	}

	got, err := provider.GetSet("default")
	if err != nil {
		t.Fatalf("GetSet() error = %v", err)
	}
	if got.Forcing.MeanAirTemp != -5 {
		t.Errorf("GetSet(default) mean air temp = %v, expected the stored -5", got.Forcing.MeanAirTemp)
	}

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.ParameterSets) != 1 {
		t.Errorf("LoadConfig() sets = %+v, expected the stored default only", cfg.ParameterSets)
	}

	if err := provider.DeleteSet("default"); err != nil {
		t.Fatalf("DeleteSet() error = %v", err)
	}
	got, err = provider.GetSet("default")
	if err != nil {
		t.Fatalf("GetSet() after delete error = %v", err)
	}
	if *got != DefaultParameterSet() {
		t.Errorf("GetSet(default) after delete = %+v, expected the reference set", *got)
	}

	if _, err := provider.GetSet("missing"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("GetSet(missing) error = %v, expected ErrSetNotFound", err)
	}

	// With nothing stored under the name, only the reference set is left
	if err := provider.DeleteSet("default"); !errors.Is(err, ErrBuiltinSet) {
		t.Errorf("DeleteSet(default) on the reference set error = %v, expected ErrBuiltinSet", err)
	}
	if err := provider.DeleteSet("missing"); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("DeleteSet(missing) error = %v, expected ErrSetNotFound", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	p, err := Open(filepath.Join(dir, "config.yaml"), "yaml")
	if err != nil || !p.IsReadOnly() {
		t.Errorf("Open(yaml) = %v, %v; expected a read-only provider", p, err)
	}

	p, err = Open(filepath.Join(dir, "config.db"), "sqlite")
	if err != nil || p.IsReadOnly() {
		t.Fatalf("Open(sqlite) = %v, %v; expected a writable provider", p, err)
	}
	p.Close()

	if _, err := Open("config.json", "json"); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}
