package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chrissnell/permafrost/pkg/config"
)

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	warm := config.DefaultParameterSet()
	warm.Name = "warm-site"
	warm.Forcing.MeanAirTemp = 1

	data := &config.ConfigData{
		Server:        config.ServerData{ListenAddr: "127.0.0.1", Port: 9090, SweepWorkers: 2, MaxSweepSize: 500},
		ParameterSets: []config.ParameterSet{config.DefaultParameterSet(), warm},
	}

	dbPath := filepath.Join(dir, "config.db")
	if err := convert(dbPath, data); err != nil {
		t.Fatalf("convert() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not created: %v", err)
	}

	provider, err := config.NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error = %v", err)
	}
	defer provider.Close()

	loaded, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Server.Port != 9090 || loaded.Server.MaxSweepSize != 500 {
		t.Errorf("Server = %+v", loaded.Server)
	}
	if len(loaded.ParameterSets) != 2 {
		t.Fatalf("got %d parameter sets, expected 2", len(loaded.ParameterSets))
	}

	got, err := provider.GetSet("warm-site")
	if err != nil {
		t.Fatalf("GetSet() error = %v", err)
	}
	if got.Forcing.MeanAirTemp != 1 || got.ID == "" {
		t.Errorf("warm-site = %+v", got)
	}
}
