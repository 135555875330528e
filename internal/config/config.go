package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level configuration for svspy
type Config struct {
	// Mode selects what the interface observes: "ports", "registers" or "both"
	Mode string `json:"mode,omitempty"`

	// RegisterSuffix marks internal signals as register candidates (default "_s")
	RegisterSuffix string `json:"registerSuffix,omitempty"`

	// SuffixCaseInsensitive relaxes the suffix match ("_S" counts too)
	SuffixCaseInsensitive bool `json:"suffixCaseInsensitive,omitempty"`

	// SuffixAppliesToPorts also classifies suffix-named ports as registers
	SuffixAppliesToPorts bool `json:"suffixAppliesToPorts,omitempty"`

	// TopModule forces the top module instead of detecting it
	TopModule string `json:"topModule,omitempty"`

	// TopInstance is the DUT instance name the bind hint refers to
	TopInstance string `json:"topInstance,omitempty"`

	// InterfaceName is the name of the generated interface
	InterfaceName string `json:"interfaceName,omitempty"`

	// Output is the path of the generated interface file
	Output string `json:"output,omitempty"`

	// SpyPrefix is prepended to every generated spy name
	SpyPrefix string `json:"spyPrefix,omitempty"`

	// PathSeparator joins instance-path segments when names collide
	PathSeparator string `json:"pathSeparator,omitempty"`

	// Sources is a list of glob patterns for source files (** supported)
	Sources []string `json:"sources,omitempty"`

	// Exclude is a list of glob patterns to drop from the source set
	Exclude []string `json:"exclude,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Mode:           "both",
		RegisterSuffix: "_s",
		TopInstance:    "i_dut",
		InterfaceName:  "spy_if",
		Output:         "spy_if.sv",
		SpyPrefix:      "spy_",
		PathSeparator:  "_",
		Sources:        []string{"*.v", "*.sv", "**/*.v", "**/*.sv"},
		Exclude:        []string{},
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./svspy.json (current working directory)
//  2. ./.svspy.json (current working directory)
//  3. <rootPath>/svspy.json (if different from cwd)
//  4. ~/.config/svspy/config.json
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "svspy.json"),
		filepath.Join(cwd, ".svspy.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "svspy.json"),
				filepath.Join(rootPath, ".svspy.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "svspy", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.RegisterSuffix == "" {
		c.RegisterSuffix = def.RegisterSuffix
	}
	if c.TopInstance == "" {
		c.TopInstance = def.TopInstance
	}
	if c.InterfaceName == "" {
		c.InterfaceName = def.InterfaceName
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.SpyPrefix == "" {
		c.SpyPrefix = def.SpyPrefix
	}
	if c.PathSeparator == "" {
		c.PathSeparator = def.PathSeparator
	}
	if len(c.Sources) == 0 {
		c.Sources = def.Sources
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
