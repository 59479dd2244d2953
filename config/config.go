package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Backend selects how voices make sound
type Backend string

const (
	BackendSynth Backend = "synth" // built-in software synth
	BackendMIDI  Backend = "midi"  // external MIDI port
	BackendNone  Backend = "none"  // silent, for headless use
)

// AudioConfig defines the sound output
type AudioConfig struct {
	Backend    Backend        `json:"backend"`
	SampleRate int            `json:"sampleRate,omitempty"`
	PortName   string         `json:"portName,omitempty"`
	Channels   map[string]int `json:"channels,omitempty"` // voice name -> MIDI channel (0-15)
}

// KeyboardConfig is a MIDI keyboard used to pick the root note
type KeyboardConfig struct {
	PortName    string `json:"portName"`
	AutoConnect bool   `json:"autoConnect"`
	Target      string `json:"target,omitempty"` // "bass" or "harmony"
}

// StorageConfig controls where saved melodies go
type StorageConfig struct {
	Dir         string `json:"dir,omitempty"`
	MaxMelodies int    `json:"maxMelodies,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo int    `json:"lastTempo,omitempty"`
	LastGenre string `json:"lastGenre,omitempty"`
	Italian   bool   `json:"italian,omitempty"`
	Palette   string `json:"palette,omitempty"` // optional GIMP palette file
}

// Config is the main configuration structure
type Config struct {
	Audio     AudioConfig      `json:"audio"`
	Keyboards []KeyboardConfig `json:"keyboards,omitempty"`
	Storage   StorageConfig    `json:"storage,omitempty"`
	UI        UIConfig         `json:"ui,omitempty"`
	Debug     bool             `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Backend:    BackendSynth,
			SampleRate: 44100,
			Channels: map[string]int{
				"kick":   9,
				"snare":  9,
				"hihat":  9,
				"bass":   1,
				"chords": 2,
				"melody": 3,
			},
		},
		Storage: StorageConfig{
			MaxMelodies: 20,
		},
		UI: UIConfig{
			LastTempo: 120,
			LastGenre: "rock",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drummer"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would break playback
func (c *Config) Validate() error {
	switch c.Audio.Backend {
	case BackendSynth, BackendMIDI, BackendNone:
	default:
		return fmt.Errorf("unknown audio backend %q", c.Audio.Backend)
	}
	for voice, ch := range c.Audio.Channels {
		if ch < 0 || ch > 15 {
			return fmt.Errorf("channel for %s out of range: %d", voice, ch)
		}
	}
	if c.Storage.MaxMelodies < 0 {
		return fmt.Errorf("maxMelodies must not be negative")
	}
	return nil
}

// StorageDir returns the melody storage directory, defaulting to the config dir
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "store"), nil
}

// Channel returns the MIDI channel for a voice
func (c *Config) Channel(voice string) uint8 {
	if ch, ok := c.Audio.Channels[voice]; ok {
		return uint8(ch)
	}
	return 0
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating the directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FindKeyboard finds a keyboard config by port name
func (c *Config) FindKeyboard(portName string) *KeyboardConfig {
	for i := range c.Keyboards {
		if c.Keyboards[i].PortName == portName {
			return &c.Keyboards[i]
		}
	}
	return nil
}

// AddKeyboard adds or updates a keyboard config
func (c *Config) AddKeyboard(kb KeyboardConfig) {
	for i := range c.Keyboards {
		if c.Keyboards[i].PortName == kb.PortName {
			c.Keyboards[i] = kb
			return
		}
	}
	c.Keyboards = append(c.Keyboards, kb)
}

// AutoConnectKeyboards returns keyboards with autoConnect enabled
func (c *Config) AutoConnectKeyboards() []KeyboardConfig {
	var result []KeyboardConfig
	for _, kb := range c.Keyboards {
		if kb.AutoConnect {
			result = append(result, kb)
		}
	}
	return result
}
