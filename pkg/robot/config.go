package robot

import (
	"encoding/json"
	"os"
)

// DefaultConfigFile is where setup stores the rig configuration.
const DefaultConfigFile = "bimanual.json"

// Sides of the rig, used in topic names and config keys.
const (
	Left  = "left"
	Right = "right"
)

// Sides returns the rig sides in display order.
func Sides() []string { return []string{Left, Right} }

// Config holds the rig configuration: one leader/follower arm pair per side,
// plus the camera set selector.
type Config struct {
	LeaderLeft    ArmConfig `json:"leader_left"`
	LeaderRight   ArmConfig `json:"leader_right"`
	FollowerLeft  ArmConfig `json:"follower_left"`
	FollowerRight ArmConfig `json:"follower_right"`
	Mobile        bool      `json:"mobile"`
}

// ArmConfig holds configuration for a single arm.
type ArmConfig struct {
	Port        string      `json:"port"`
	Calibration Calibration `json:"calibration,omitempty"`
}

// IsCalibrated returns true if the arm has calibration data.
func (a *ArmConfig) IsCalibrated() bool {
	return len(a.Calibration) > 0
}

// Leader returns the leader arm config for a side.
func (c *Config) Leader(side string) *ArmConfig {
	if side == Right {
		return &c.LeaderRight
	}
	return &c.LeaderLeft
}

// Follower returns the follower arm config for a side.
func (c *Config) Follower(side string) *ArmConfig {
	if side == Right {
		return &c.FollowerRight
	}
	return &c.FollowerLeft
}

// Arms returns all four arm configs with their role names, in setup order.
func (c *Config) Arms() map[string]*ArmConfig {
	return map[string]*ArmConfig{
		"leader_left":    &c.LeaderLeft,
		"leader_right":   &c.LeaderRight,
		"follower_left":  &c.FollowerLeft,
		"follower_right": &c.FollowerRight,
	}
}

// Ready reports whether all four arms have ports and calibration.
func (c *Config) Ready() bool {
	for _, arm := range c.Arms() {
		if arm.Port == "" || !arm.IsCalibrated() {
			return false
		}
	}
	return true
}

// LoadConfig loads configuration from the default config file.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists.
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
