package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files.
// Parameter sets in a YAML file are read-only.
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Server        ServerYAML         `yaml:"server,omitempty"`
		ParameterSets []ParameterSetYAML `yaml:"parameter-sets,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Server: ServerData{
			ListenAddr:   yamlConfig.Server.ListenAddr,
			Port:         yamlConfig.Server.Port,
			SweepWorkers: yamlConfig.Server.SweepWorkers,
			MaxSweepSize: yamlConfig.Server.MaxSweepSize,
		},
		ParameterSets: make([]ParameterSet, 0, len(yamlConfig.ParameterSets)),
	}

	seen := make(map[string]bool)
	for _, s := range yamlConfig.ParameterSets {
		if err := ValidateName(s.Name); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate parameter set %q", s.Name)
		}
		seen[s.Name] = true

		config.ParameterSets = append(config.ParameterSets, s.toParameterSet())
	}

	y.config = config
	return config, nil
}

// ListSets returns every parameter set in the file
func (y *YAMLProvider) ListSets() ([]ParameterSet, error) {
	cfg, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.ParameterSets, nil
}

// GetSet returns the named parameter set
func (y *YAMLProvider) GetSet(name string) (*ParameterSet, error) {
	cfg, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return findSet(cfg.ParameterSets, name)
}

// SaveSet is not supported for YAML files
func (y *YAMLProvider) SaveSet(set *ParameterSet) error {
	return ErrReadOnly
}

// DeleteSet is not supported for YAML files
func (y *YAMLProvider) DeleteSet(name string) error {
	return ErrReadOnly
}

// IsReadOnly returns true since YAML files are edited by hand
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML files
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with yaml tags

type ServerYAML struct {
	ListenAddr   string `yaml:"listen-addr,omitempty"`
	Port         int    `yaml:"port,omitempty"`
	SweepWorkers int    `yaml:"sweep-workers,omitempty"`
	MaxSweepSize int    `yaml:"max-sweep-size,omitempty"`
}

type ParameterSetYAML struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Snow        SnowYAML    `yaml:"snow"`
	Organic     OrganicYAML `yaml:"organic"`
	Mineral     MineralYAML `yaml:"mineral"`
	Forcing     ForcingYAML `yaml:"forcing"`
}

type SnowYAML struct {
	Conductivity float64 `yaml:"conductivity"`
	HeatCapacity float64 `yaml:"heat-capacity"`
	Depth        float64 `yaml:"depth"`
}

type OrganicYAML struct {
	ConductivityFrozen float64 `yaml:"conductivity-frozen"`
	ConductivityThawed float64 `yaml:"conductivity-thawed"`
	HeatCapacityFrozen float64 `yaml:"heat-capacity-frozen"`
	HeatCapacityThawed float64 `yaml:"heat-capacity-thawed"`
	Thickness          float64 `yaml:"thickness"`
}

type MineralYAML struct {
	ConductivityFrozen float64 `yaml:"conductivity-frozen"`
	ConductivityThawed float64 `yaml:"conductivity-thawed"`
	HeatCapacityFrozen float64 `yaml:"heat-capacity-frozen"`
	HeatCapacityThawed float64 `yaml:"heat-capacity-thawed"`
	Porosity           float64 `yaml:"porosity"`
}

type ForcingYAML struct {
	MeanAirTemp      float64 `yaml:"mean-air-temp"`
	AirTempAmplitude float64 `yaml:"air-temp-amplitude"`
}

func (s ParameterSetYAML) toParameterSet() ParameterSet {
	return ParameterSet{
		Name:        s.Name,
		Description: s.Description,
		Snow: SnowData{
			Conductivity: s.Snow.Conductivity,
			HeatCapacity: s.Snow.HeatCapacity,
			Depth:        s.Snow.Depth,
		},
		Organic: OrganicData{
			ConductivityFrozen: s.Organic.ConductivityFrozen,
			ConductivityThawed: s.Organic.ConductivityThawed,
			HeatCapacityFrozen: s.Organic.HeatCapacityFrozen,
			HeatCapacityThawed: s.Organic.HeatCapacityThawed,
			Thickness:          s.Organic.Thickness,
		},
		Mineral: MineralData{
			ConductivityFrozen: s.Mineral.ConductivityFrozen,
			ConductivityThawed: s.Mineral.ConductivityThawed,
			HeatCapacityFrozen: s.Mineral.HeatCapacityFrozen,
			HeatCapacityThawed: s.Mineral.HeatCapacityThawed,
			Porosity:           s.Mineral.Porosity,
		},
		Forcing: ForcingData{
			MeanAirTemp:      s.Forcing.MeanAirTemp,
			AirTempAmplitude: s.Forcing.AirTempAmplitude,
		},
	}
}
