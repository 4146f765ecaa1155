package config

import (
	"errors"

	"github.com/chrissnell/permafrost/internal/thermal"
)

var (
	// ErrSetNotFound is returned when no parameter set has the requested name
	ErrSetNotFound = errors.New("parameter set not found")

	// ErrReadOnly is returned by write operations on a read-only provider
	ErrReadOnly = errors.New("configuration provider is read-only")

	// ErrBuiltinSet is returned when deleting the built-in reference set
	ErrBuiltinSet = errors.New("the built-in reference set cannot be deleted")
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Named parameter sets
	ListSets() ([]ParameterSet, error)
	GetSet(name string) (*ParameterSet, error)
	SaveSet(set *ParameterSet) error
	DeleteSet(name string) error

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server        ServerData     `json:"server"`
	ParameterSets []ParameterSet `json:"parameter_sets,omitempty"`
}

// ServerData holds the REST server settings
type ServerData struct {
	ListenAddr   string `json:"listen_addr,omitempty"`
	Port         int    `json:"port,omitempty"`
	SweepWorkers int    `json:"sweep_workers,omitempty"`
	MaxSweepSize int    `json:"max_sweep_size,omitempty"`
}

// ParameterSet is a named, persisted set of model inputs in engineering units
type ParameterSet struct {
	ID          string      `json:"id,omitempty" msgpack:"id,omitempty"`
	Name        string      `json:"name" msgpack:"name"`
	Description string      `json:"description,omitempty" msgpack:"description,omitempty"`
	Snow        SnowData    `json:"snow" msgpack:"snow"`
	Organic     OrganicData `json:"organic" msgpack:"organic"`
	Mineral     MineralData `json:"mineral" msgpack:"mineral"`
	Forcing     ForcingData `json:"forcing" msgpack:"forcing"`
}

// SnowData holds the snow cover properties
type SnowData struct {
	Conductivity float64 `json:"conductivity" msgpack:"conductivity"`   // W/m/°C
	HeatCapacity float64 `json:"heat_capacity" msgpack:"heat_capacity"` // J/m³/°C
	Depth        float64 `json:"depth" msgpack:"depth"`                 // m
}

// OrganicData holds the moss/peat layer properties
type OrganicData struct {
	ConductivityFrozen float64 `json:"conductivity_frozen" msgpack:"conductivity_frozen"`
	ConductivityThawed float64 `json:"conductivity_thawed" msgpack:"conductivity_thawed"`
	HeatCapacityFrozen float64 `json:"heat_capacity_frozen" msgpack:"heat_capacity_frozen"`
	HeatCapacityThawed float64 `json:"heat_capacity_thawed" msgpack:"heat_capacity_thawed"`
	Thickness          float64 `json:"thickness" msgpack:"thickness"`
}

// MineralData holds the mineral soil properties
type MineralData struct {
	ConductivityFrozen float64 `json:"conductivity_frozen" msgpack:"conductivity_frozen"`
	ConductivityThawed float64 `json:"conductivity_thawed" msgpack:"conductivity_thawed"`
	HeatCapacityFrozen float64 `json:"heat_capacity_frozen" msgpack:"heat_capacity_frozen"`
	HeatCapacityThawed float64 `json:"heat_capacity_thawed" msgpack:"heat_capacity_thawed"`
	Porosity           float64 `json:"porosity" msgpack:"porosity"`
}

// ForcingData holds the annual air temperature sinusoid
type ForcingData struct {
	MeanAirTemp      float64 `json:"mean_air_temp" msgpack:"mean_air_temp"`           // °C
	AirTempAmplitude float64 `json:"air_temp_amplitude" msgpack:"air_temp_amplitude"` // °C
}

// Inputs converts the set into model inputs
func (p ParameterSet) Inputs() thermal.Inputs {
	return thermal.Inputs{
		OrganicKFrozen:   p.Organic.ConductivityFrozen,
		OrganicKThawed:   p.Organic.ConductivityThawed,
		OrganicCFrozen:   p.Organic.HeatCapacityFrozen,
		OrganicCThawed:   p.Organic.HeatCapacityThawed,
		OrganicThickness: p.Organic.Thickness,
		MineralKFrozen:   p.Mineral.ConductivityFrozen,
		MineralKThawed:   p.Mineral.ConductivityThawed,
		MineralCFrozen:   p.Mineral.HeatCapacityFrozen,
		MineralCThawed:   p.Mineral.HeatCapacityThawed,
		Porosity:         p.Mineral.Porosity,
		SnowK:            p.Snow.Conductivity,
		SnowC:            p.Snow.HeatCapacity,
		SnowDepth:        p.Snow.Depth,
		AirMean:          p.Forcing.MeanAirTemp,
		AirAmplitude:     p.Forcing.AirTempAmplitude,
	}
}

// DefaultParameterSet returns the reference scenario
func DefaultParameterSet() ParameterSet {
	return ParameterSet{
		Name:        "default",
		Description: "Reference scenario: 0.3 m snow over 0.25 m moss on silty mineral soil",
		Snow: SnowData{
			Conductivity: 0.15,
			HeatCapacity: 500000,
			Depth:        0.3,
		},
		Organic: OrganicData{
			ConductivityFrozen: 0.25,
			ConductivityThawed: 0.1,
			HeatCapacityFrozen: 1000000,
			HeatCapacityThawed: 2000000,
			Thickness:          0.25,
		},
		Mineral: MineralData{
			ConductivityFrozen: 1.8,
			ConductivityThawed: 1.0,
			HeatCapacityFrozen: 2000000,
			HeatCapacityThawed: 3000000,
			Porosity:           0.45,
		},
		Forcing: ForcingData{
			MeanAirTemp:      -2,
			AirTempAmplitude: 17,
		},
	}
}

// findSet returns the set with the given name from a loaded configuration
func findSet(sets []ParameterSet, name string) (*ParameterSet, error) {
	for i := range sets {
		if sets[i].Name == name {
			set := sets[i]
			return &set, nil
		}
	}
	return nil, ErrSetNotFound
}
