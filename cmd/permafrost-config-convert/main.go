package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/permafrost/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	configData, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		printConfigSummary(configData)
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing database: %v\n", err)
			os.Exit(1)
		}
	}

	if err := convert(*sqliteFile, configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing SQLite configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote server settings and %d parameter sets\n", len(configData.ParameterSets))
	fmt.Printf("Start the server with: permafrost-server -config %s -config-backend sqlite\n", *sqliteFile)
}

// convert copies the server settings and every parameter set into a new SQLite database
func convert(dbPath string, configData *config.ConfigData) error {
	provider, err := config.NewSQLiteProvider(dbPath)
	if err != nil {
		return err
	}
	defer provider.Close()

	if err := provider.SaveServerConfig(&configData.Server); err != nil {
		return fmt.Errorf("failed to save server settings: %w", err)
	}

	for i := range configData.ParameterSets {
		set := configData.ParameterSets[i]
		if err := provider.SaveSet(&set); err != nil {
			return fmt.Errorf("failed to save parameter set %s: %w", set.Name, err)
		}
	}
	return nil
}

func printConfigSummary(configData *config.ConfigData) {
	s := configData.Server
	fmt.Printf("\nServer: %s:%d, %d sweep workers, %d max sweep points\n", s.ListenAddr, s.Port, s.SweepWorkers, s.MaxSweepSize)
	fmt.Printf("Parameter sets (%d):\n", len(configData.ParameterSets))
	for _, set := range configData.ParameterSets {
		fmt.Printf("  - %s: Tair %.2f °C, Aair %.2f °C, snow %.2f m, organic %.2f m\n",
			set.Name, set.Forcing.MeanAirTemp, set.Forcing.AirTempAmplitude, set.Snow.Depth, set.Organic.Thickness)
	}
}
