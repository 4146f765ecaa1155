package config

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Input ranges accepted from users
const (
	MaxSnowDepth        = 5.0  // m
	MaxOrganicThickness = 0.25 // m
	MaxAirTempAmplitude = 25.0 // °C
)

var setNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _.-]{0,63}$`)

// FieldError describes one out-of-range parameter
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every out-of-range parameter of a set
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (v *ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "invalid parameter set: " + strings.Join(msgs, "; ")
}

func (v *ValidationError) add(field, format string, args ...interface{}) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidationError) positive(field string, value float64) {
	if !(value > 0) {
		v.add(field, "must be greater than 0, got %g", value)
	}
}

func (v *ValidationError) between(field string, value, min, max float64) {
	if !(value >= min && value <= max) {
		v.add(field, "must be between %g and %g, got %g", min, max, value)
	}
}

// Validate range-checks the set. The model itself accepts any numbers and
// reports degenerate combinations as NaN, so this is the only place inputs are
// rejected. A mean air temperature larger than the amplitude is allowed.
func (p ParameterSet) Validate() error {
	v := &ValidationError{}

	v.positive("snow.conductivity", p.Snow.Conductivity)
	v.positive("snow.heat_capacity", p.Snow.HeatCapacity)
	v.between("snow.depth", p.Snow.Depth, 0, MaxSnowDepth)

	v.positive("organic.conductivity_frozen", p.Organic.ConductivityFrozen)
	v.positive("organic.conductivity_thawed", p.Organic.ConductivityThawed)
	v.positive("organic.heat_capacity_frozen", p.Organic.HeatCapacityFrozen)
	v.positive("organic.heat_capacity_thawed", p.Organic.HeatCapacityThawed)
	v.between("organic.thickness", p.Organic.Thickness, 0, MaxOrganicThickness)

	v.positive("mineral.conductivity_frozen", p.Mineral.ConductivityFrozen)
	v.positive("mineral.conductivity_thawed", p.Mineral.ConductivityThawed)
	v.positive("mineral.heat_capacity_frozen", p.Mineral.HeatCapacityFrozen)
	v.positive("mineral.heat_capacity_thawed", p.Mineral.HeatCapacityThawed)
	v.between("mineral.porosity", p.Mineral.Porosity, 0, 1)

	v.between("forcing.mean_air_temp", p.Forcing.MeanAirTemp, -60, 40)
	v.between("forcing.air_temp_amplitude", p.Forcing.AirTempAmplitude, 0, MaxAirTempAmplitude)

	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

// ValidateName checks that a set name is usable as a key and in a URL path
func ValidateName(name string) error {
	if !setNamePattern.MatchString(name) {
		return fmt.Errorf("invalid parameter set name %q", name)
	}
	return nil
}

// ApplyDefaults fills in unset server options
func (s *ServerData) ApplyDefaults(logger *zap.SugaredLogger) {
	// If a ListenAddr was not provided, listen on all interfaces
	if s.ListenAddr == "" {
		logger.Info("server.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		s.ListenAddr = "0.0.0.0"
	}

	if s.Port == 0 {
		logger.Info("server.port not provided; defaulting to 8080")
		s.Port = 8080
	}

	if s.SweepWorkers <= 0 {
		logger.Info("server.sweep_workers not provided; defaulting to 4")
		s.SweepWorkers = 4
	}

	if s.MaxSweepSize <= 0 {
		s.MaxSweepSize = 10000
	}
}
