package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// All fields are pointers so a partial JSON file only overrides what it
// names; the Get* accessors supply defaults for the rest. Lengths are
// centimetres, momenta GeV/c, field tesla.
type TuningConfig struct {
	// Vertex finder cuts
	RequireSilicon        *bool    `json:"require_silicon,omitempty"`
	MaxQuality            *float64 `json:"max_quality,omitempty"`
	MinOuterHits          *int     `json:"min_outer_hits,omitempty"`
	MinDCAXY              *float64 `json:"min_dca_xy,omitempty"`
	MinDCAZ               *float64 `json:"min_dca_z,omitempty"`
	MaxIntersectionRadius *float64 `json:"max_intersection_radius,omitempty"`
	MaxProjectedDZ        *float64 `json:"max_projected_dz,omitempty"`
	MaxPairDCA            *float64 `json:"max_pair_dca,omitempty"`
	MinDecayLength        *float64 `json:"min_decay_length,omitempty"`
	DecayMass             *float64 `json:"decay_mass,omitempty"`
	TangentTolerance      *float64 `json:"tangent_tolerance,omitempty"`

	// Field and propagation params
	BzTesla   *float64 `json:"bz_tesla,omitempty"`
	EtaWindow *float64 `json:"eta_window,omitempty"`

	// Mass histogram params
	MassBins *int     `json:"mass_bins,omitempty"`
	PtBins   *int     `json:"pt_bins,omitempty"`
	MassMax  *float64 `json:"mass_max,omitempty"`
	PtMax    *float64 `json:"pt_max,omitempty"`

	// Laser calibration params
	LaserMaxDCA  *float64 `json:"laser_max_dca,omitempty"`
	LaserPhiBins *int     `json:"laser_phi_bins,omitempty"`
	LaserRBins   *int     `json:"laser_r_bins,omitempty"`
	LaserZBins   *int     `json:"laser_z_bins,omitempty"`
	LaserErrRPhi *float64 `json:"laser_err_rphi,omitempty"`
	LaserErrZ    *float64 `json:"laser_err_z,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/tracking/vertexing/
		"../../../../" + DefaultConfigPath, // from internal/tracking/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MaxQuality != nil && *c.MaxQuality <= 0 {
		return fmt.Errorf("max_quality must be positive, got %f", *c.MaxQuality)
	}
	if c.MinOuterHits != nil && *c.MinOuterHits < 0 {
		return fmt.Errorf("min_outer_hits must be non-negative, got %d", *c.MinOuterHits)
	}
	if c.MinDCAXY != nil && *c.MinDCAXY < 0 {
		return fmt.Errorf("min_dca_xy must be non-negative, got %f", *c.MinDCAXY)
	}
	if c.MinDCAZ != nil && *c.MinDCAZ < 0 {
		return fmt.Errorf("min_dca_z must be non-negative, got %f", *c.MinDCAZ)
	}
	if c.MaxIntersectionRadius != nil && *c.MaxIntersectionRadius <= 0 {
		return fmt.Errorf("max_intersection_radius must be positive, got %f", *c.MaxIntersectionRadius)
	}
	if c.MaxProjectedDZ != nil && *c.MaxProjectedDZ <= 0 {
		return fmt.Errorf("max_projected_dz must be positive, got %f", *c.MaxProjectedDZ)
	}
	if c.MaxPairDCA != nil && *c.MaxPairDCA <= 0 {
		return fmt.Errorf("max_pair_dca must be positive, got %f", *c.MaxPairDCA)
	}
	if c.MinDecayLength != nil && *c.MinDecayLength < 0 {
		return fmt.Errorf("min_decay_length must be non-negative, got %f", *c.MinDecayLength)
	}
	if c.DecayMass != nil && *c.DecayMass < 0 {
		return fmt.Errorf("decay_mass must be non-negative, got %f", *c.DecayMass)
	}
	if c.TangentTolerance != nil && *c.TangentTolerance < 0 {
		return fmt.Errorf("tangent_tolerance must be non-negative, got %f", *c.TangentTolerance)
	}
	if c.EtaWindow != nil && *c.EtaWindow < 0 {
		return fmt.Errorf("eta_window must be non-negative, got %f", *c.EtaWindow)
	}
	if c.MassBins != nil && *c.MassBins <= 0 {
		return fmt.Errorf("mass_bins must be positive, got %d", *c.MassBins)
	}
	if c.PtBins != nil && *c.PtBins <= 0 {
		return fmt.Errorf("pt_bins must be positive, got %d", *c.PtBins)
	}
	if c.MassMax != nil && *c.MassMax <= 0 {
		return fmt.Errorf("mass_max must be positive, got %f", *c.MassMax)
	}
	if c.PtMax != nil && *c.PtMax <= 0 {
		return fmt.Errorf("pt_max must be positive, got %f", *c.PtMax)
	}
	if c.LaserMaxDCA != nil && *c.LaserMaxDCA <= 0 {
		return fmt.Errorf("laser_max_dca must be positive, got %f", *c.LaserMaxDCA)
	}
	if c.LaserPhiBins != nil && *c.LaserPhiBins <= 0 {
		return fmt.Errorf("laser_phi_bins must be positive, got %d", *c.LaserPhiBins)
	}
	if c.LaserRBins != nil && *c.LaserRBins <= 0 {
		return fmt.Errorf("laser_r_bins must be positive, got %d", *c.LaserRBins)
	}
	if c.LaserZBins != nil && *c.LaserZBins <= 0 {
		return fmt.Errorf("laser_z_bins must be positive, got %d", *c.LaserZBins)
	}
	if c.LaserErrRPhi != nil && *c.LaserErrRPhi <= 0 {
		return fmt.Errorf("laser_err_rphi must be positive, got %f", *c.LaserErrRPhi)
	}
	if c.LaserErrZ != nil && *c.LaserErrZ <= 0 {
		return fmt.Errorf("laser_err_z must be positive, got %f", *c.LaserErrZ)
	}
	return nil
}

// GetRequireSilicon returns the require_silicon value or the default.
func (c *TuningConfig) GetRequireSilicon() bool {
	if c.RequireSilicon == nil {
		return false // default: outer-only tracks allowed
	}
	return *c.RequireSilicon
}

// GetMaxQuality returns the max_quality value or the default.
func (c *TuningConfig) GetMaxQuality() float64 {
	if c.MaxQuality == nil {
		return 4.0 // default chi2/ndf ceiling
	}
	return *c.MaxQuality
}

// GetMinOuterHits returns the min_outer_hits value or the default.
func (c *TuningConfig) GetMinOuterHits() int {
	if c.MinOuterHits == nil {
		return 20
	}
	return *c.MinOuterHits
}

// GetMinDCAXY returns the min_dca_xy value or the default.
func (c *TuningConfig) GetMinDCAXY() float64 {
	if c.MinDCAXY == nil {
		return 0.020 // cm; prompt tracks sit below this
	}
	return *c.MinDCAXY
}

// GetMinDCAZ returns the min_dca_z value or the default.
func (c *TuningConfig) GetMinDCAZ() float64 {
	if c.MinDCAZ == nil {
		return 0.020 // cm
	}
	return *c.MinDCAZ
}

// GetMaxIntersectionRadius returns the max_intersection_radius value or the default.
func (c *TuningConfig) GetMaxIntersectionRadius() float64 {
	if c.MaxIntersectionRadius == nil {
		return 40.0 // cm; candidates beyond this sit outside the silicon volume
	}
	return *c.MaxIntersectionRadius
}

// GetMaxProjectedDZ returns the max_projected_dz value or the default.
func (c *TuningConfig) GetMaxProjectedDZ() float64 {
	if c.MaxProjectedDZ == nil {
		return 1.0 // cm
	}
	return *c.MaxProjectedDZ
}

// GetMaxPairDCA returns the max_pair_dca value or the default.
func (c *TuningConfig) GetMaxPairDCA() float64 {
	if c.MaxPairDCA == nil {
		return 0.5 // cm
	}
	return *c.MaxPairDCA
}

// GetMinDecayLength returns the min_decay_length value or the default.
func (c *TuningConfig) GetMinDecayLength() float64 {
	if c.MinDecayLength == nil {
		return 0.2 // cm; strict lower bound on displacement
	}
	return *c.MinDecayLength
}

// GetDecayMass returns the decay_mass value or the default.
func (c *TuningConfig) GetDecayMass() float64 {
	if c.DecayMass == nil {
		return 0.13957039 // charged pion, GeV/c²
	}
	return *c.DecayMass
}

// GetTangentTolerance returns the tangent_tolerance value or the default.
func (c *TuningConfig) GetTangentTolerance() float64 {
	if c.TangentTolerance == nil {
		return 0.2 // cm gap treated as a near-tangency
	}
	return *c.TangentTolerance
}

// GetBzTesla returns the bz_tesla value or the default.
func (c *TuningConfig) GetBzTesla() float64 {
	if c.BzTesla == nil {
		return 1.4 // nominal solenoid field
	}
	return *c.BzTesla
}

// GetEtaWindow returns the eta_window value or the default.
func (c *TuningConfig) GetEtaWindow() float64 {
	if c.EtaWindow == nil {
		return 2.0
	}
	return *c.EtaWindow
}

// GetMassBins returns the mass_bins value or the default.
func (c *TuningConfig) GetMassBins() int {
	if c.MassBins == nil {
		return 500
	}
	return *c.MassBins
}

// GetPtBins returns the pt_bins value or the default.
func (c *TuningConfig) GetPtBins() int {
	if c.PtBins == nil {
		return 500
	}
	return *c.PtBins
}

// GetMassMax returns the mass_max value or the default.
func (c *TuningConfig) GetMassMax() float64 {
	if c.MassMax == nil {
		return 5.0 // GeV/c²
	}
	return *c.MassMax
}

// GetPtMax returns the pt_max value or the default.
func (c *TuningConfig) GetPtMax() float64 {
	if c.PtMax == nil {
		return 5.0 // GeV/c
	}
	return *c.PtMax
}

// GetLaserMaxDCA returns the laser_max_dca value or the default.
func (c *TuningConfig) GetLaserMaxDCA() float64 {
	if c.LaserMaxDCA == nil {
		return 20.0 // cm hit-to-laser association window
	}
	return *c.LaserMaxDCA
}

// GetLaserPhiBins returns the laser_phi_bins value or the default.
func (c *TuningConfig) GetLaserPhiBins() int {
	if c.LaserPhiBins == nil {
		return 36
	}
	return *c.LaserPhiBins
}

// GetLaserRBins returns the laser_r_bins value or the default.
func (c *TuningConfig) GetLaserRBins() int {
	if c.LaserRBins == nil {
		return 16
	}
	return *c.LaserRBins
}

// GetLaserZBins returns the laser_z_bins value or the default.
func (c *TuningConfig) GetLaserZBins() int {
	if c.LaserZBins == nil {
		return 80
	}
	return *c.LaserZBins
}

// GetLaserErrRPhi returns the laser_err_rphi value or the default.
func (c *TuningConfig) GetLaserErrRPhi() float64 {
	if c.LaserErrRPhi == nil {
		return 0.015 // cm r-phi cluster error
	}
	return *c.LaserErrRPhi
}

// GetLaserErrZ returns the laser_err_z value or the default.
func (c *TuningConfig) GetLaserErrZ() float64 {
	if c.LaserErrZ == nil {
		return 0.075 // cm z cluster error
	}
	return *c.LaserErrZ
}
