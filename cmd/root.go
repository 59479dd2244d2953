package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-drummer/debug"
	"go-drummer/midi"
	"go-drummer/theme"
	"go-drummer/tui"
)

var rootCmd = &cobra.Command{
	Use:   "drummer",
	Short: "A drum machine with chords, melodies and a bass fretboard",
	Long: `drummer plays drum patterns, chord progressions or generated melodies, and
a bass line on a four-string fretboard, all locked to one tempo.

Without a subcommand it opens the terminal interface. Sound starts on the
first play request.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flags.config, "config", "", "config file (default ~/.config/go-drummer/config.json)")
	f.BoolVar(&flags.debug, "debug", false, "write a debug log to ~/.config/go-drummer/debug.log")
	f.StringVar(&flags.backend, "backend", "", "sound output: synth, midi or none")
	f.StringVar(&flags.port, "port", "", "MIDI output port name (midi backend)")
	f.StringVar(&flags.palette, "palette", "", "GIMP palette file for the interface")
	f.BoolVar(&flags.italian, "italian", false, "Do Re Mi note names")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	th, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}
	s, err := newStudio(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	go s.Run(ctx)

	// Keyboards are optional: only poll when some are configured
	var deviceMgr *midi.DeviceManager
	targets := make(map[string]string)
	if kbs := cfg.AutoConnectKeyboards(); len(kbs) > 0 {
		names := make([]string, len(kbs))
		for i, kb := range kbs {
			names[i] = kb.PortName
			targets[kb.PortName] = kb.Target
		}
		deviceMgr = midi.NewDeviceManager(names)
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(ctx, s, deviceMgr, th, targets)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run interface: %w", err)
	}

	snap := s.Snapshot()
	cfg.UI.LastTempo = snap.Drums.BPM
	cfg.UI.LastGenre = snap.Drums.Genre
	cfg.UI.Italian = snap.Italian
	if err := saveConfig(cfg); err != nil {
		debug.Log("config", "save: %v", err)
	}
	return nil
}
