package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/permafrost/internal/thermal"
	"github.com/chrissnell/permafrost/pkg/config"
	"github.com/chrissnell/permafrost/pkg/responseformat"
)

func main() {
	def := config.DefaultParameterSet()

	cfgFile := flag.String("config", "", "Optional configuration source holding named parameter sets")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' or 'sqlite'")
	setName := flag.String("set", "", "Named parameter set to start from (default: the reference set)")

	// Overrides. Only flags given on the command line replace set values.
	tair := flag.Float64("tair", def.Forcing.MeanAirTemp, "Mean annual air temperature (°C)")
	aair := flag.Float64("aair", def.Forcing.AirTempAmplitude, "Annual air temperature amplitude (°C)")
	hs := flag.Float64("hs", def.Snow.Depth, "Snow depth (m)")
	ks := flag.Float64("ks", def.Snow.Conductivity, "Snow conductivity (W/m/°C)")
	cs := flag.Float64("cs", def.Snow.HeatCapacity, "Snow volumetric heat capacity (J/m³/°C)")
	hv := flag.Float64("hv", def.Organic.Thickness, "Organic layer thickness (m)")
	kvf := flag.Float64("kvf", def.Organic.ConductivityFrozen, "Frozen organic conductivity (W/m/°C)")
	kvt := flag.Float64("kvt", def.Organic.ConductivityThawed, "Thawed organic conductivity (W/m/°C)")
	cvf := flag.Float64("cvf", def.Organic.HeatCapacityFrozen, "Frozen organic heat capacity (J/m³/°C)")
	cvt := flag.Float64("cvt", def.Organic.HeatCapacityThawed, "Thawed organic heat capacity (J/m³/°C)")
	kmf := flag.Float64("kmf", def.Mineral.ConductivityFrozen, "Frozen mineral conductivity (W/m/°C)")
	kmt := flag.Float64("kmt", def.Mineral.ConductivityThawed, "Thawed mineral conductivity (W/m/°C)")
	cmf := flag.Float64("cmf", def.Mineral.HeatCapacityFrozen, "Frozen mineral heat capacity (J/m³/°C)")
	cmt := flag.Float64("cmt", def.Mineral.HeatCapacityThawed, "Thawed mineral heat capacity (J/m³/°C)")
	eta := flag.Float64("eta", def.Mineral.Porosity, "Volumetric water content of the mineral soil (0-1)")
	flag.Parse()

	set := def
	if *setName != "" {
		if *cfgFile == "" {
			fmt.Fprintf(os.Stderr, "-set requires -config\n")
			os.Exit(1)
		}
		loaded, err := loadSet(*cfgFile, *cfgBackend, *setName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading parameter set %s: %v\n", *setName, err)
			os.Exit(1)
		}
		set = *loaded
	}

	overrides := map[string]func(){
		"tair": func() { set.Forcing.MeanAirTemp = *tair },
		"aair": func() { set.Forcing.AirTempAmplitude = *aair },
		"hs":   func() { set.Snow.Depth = *hs },
		"ks":   func() { set.Snow.Conductivity = *ks },
		"cs":   func() { set.Snow.HeatCapacity = *cs },
		"hv":   func() { set.Organic.Thickness = *hv },
		"kvf":  func() { set.Organic.ConductivityFrozen = *kvf },
		"kvt":  func() { set.Organic.ConductivityThawed = *kvt },
		"cvf":  func() { set.Organic.HeatCapacityFrozen = *cvf },
		"cvt":  func() { set.Organic.HeatCapacityThawed = *cvt },
		"kmf":  func() { set.Mineral.ConductivityFrozen = *kmf },
		"kmt":  func() { set.Mineral.ConductivityThawed = *kmt },
		"cmf":  func() { set.Mineral.HeatCapacityFrozen = *cmf },
		"cmt":  func() { set.Mineral.HeatCapacityThawed = *cmt },
		"eta":  func() { set.Mineral.Porosity = *eta },
	}
	flag.Visit(func(f *flag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	if err := set.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	in := set.Inputs()
	out := thermal.Evaluate(in)

	fmt.Printf("Active layer estimate for %s\n", set.Name)
	fmt.Printf("  Air:          %.2f ± %.2f °C\n", set.Forcing.MeanAirTemp, set.Forcing.AirTempAmplitude)
	fmt.Printf("  Snow:         %.2f m\n", set.Snow.Depth)
	fmt.Printf("  Organic:      %.2f m\n", set.Organic.Thickness)
	fmt.Printf("  Regime:       %s\n", out.Regime)
	fmt.Printf("  ALT:          %s m\n", responseformat.Display(out.ALT))
	fmt.Printf("  MAGT:         %s °C\n", responseformat.Display(out.MAGT))
	fmt.Printf("  Tvs:          %s °C\n", responseformat.Display(out.Tvs))
	if out.Computable() && out.Regime != thermal.RegimeNone && out.ThawWithinOrganic(in) {
		fmt.Printf("  Note:         the front stays inside the organic layer\n")
	}
	if !out.Computable() {
		fmt.Printf("  Note:         outputs are undefined for these inputs (|Tair| must be below Aair)\n")
	}
}

func loadSet(cfgFile, cfgBackend, name string) (*config.ParameterSet, error) {
	provider, err := config.Open(cfgFile, cfgBackend)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	return config.NewBuiltinSetProvider(provider).GetSet(name)
}
