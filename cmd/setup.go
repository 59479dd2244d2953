package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-drummer/audio"
	"go-drummer/catalog"
	"go-drummer/config"
	"go-drummer/debug"
	"go-drummer/instrument"
	"go-drummer/midi"
	"go-drummer/store"
	"go-drummer/studio"
)

var flags struct {
	config  string
	debug   bool
	backend string
	port    string
	palette string
	italian bool
}

// loadConfig reads the config file and lays the command-line flags over it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.config != "" {
		cfg, err = config.LoadFrom(flags.config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pf := cmd.Flags()
	if pf.Changed("backend") {
		cfg.Audio.Backend = config.Backend(flags.backend)
	}
	if pf.Changed("port") {
		cfg.Audio.PortName = flags.port
	}
	if pf.Changed("palette") {
		cfg.UI.Palette = flags.palette
	}
	if pf.Changed("italian") {
		cfg.UI.Italian = flags.italian
	}
	if pf.Changed("debug") {
		cfg.Debug = flags.debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			return nil, fmt.Errorf("enable debug log: %w", err)
		}
	}
	return cfg, nil
}

func saveConfig(cfg *config.Config) error {
	if flags.config != "" {
		return cfg.SaveTo(flags.config)
	}
	return cfg.Save()
}

func channels(cfg *config.Config) map[string]uint8 {
	ch := make(map[string]uint8, len(instrument.Voices))
	for _, v := range instrument.Voices {
		ch[v] = cfg.Channel(v)
	}
	return ch
}

func openBackend(cfg *config.Config, cat *catalog.Catalog) instrument.Backend {
	switch cfg.Audio.Backend {
	case config.BackendMIDI:
		return midi.NewOutput(cfg.Audio.PortName, channels(cfg))
	case config.BackendNone:
		return instrument.NullBackend{}
	}
	return audio.NewSynth(cfg.Audio.SampleRate, cat.Voices)
}

// newStudio wires a live studio from the config.
func newStudio(cfg *config.Config) (*studio.Studio, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, err
	}
	s := studio.New(studio.Options{
		Catalog:     cat,
		Backend:     openBackend(cfg, cat),
		Store:       store.NewFileStore(dir),
		MaxMelodies: cfg.Storage.MaxMelodies,
		Italian:     cfg.UI.Italian,
	})
	s.Do(func() error {
		if cfg.UI.LastGenre != "" {
			if err := s.Drums.SelectGenre(cfg.UI.LastGenre); err != nil {
				return err
			}
		}
		if cfg.UI.LastTempo > 0 {
			s.Drums.SetBPM(cfg.UI.LastTempo)
		}
		return nil
	})
	return s, nil
}
