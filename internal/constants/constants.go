// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

const (
	// LatentHeat is the volumetric latent heat of fusion of ice (J/m³)
	LatentHeat = 3.34e8

	// Period is the length of the annual forcing cycle in seconds
	Period = 365 * 24 * 3600.0
)
