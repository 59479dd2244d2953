package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-drummer/midi"
	"go-drummer/studio"
)

var (
	playScene    studio.Scene
	playDuration time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a scene without the interface",
	Long: `Play drums, harmony and bass headless until interrupted or for a fixed time.

Example:
  drummer play --genre funk --key A --progression funk-vamp --scale dorian
  drummer play --pattern rock_basic --groove rock_eighths --backend midi --port IAC`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	sceneFlags(playCmd.Flags(), &playScene)
	playCmd.Flags().DurationVarP(&playDuration, "duration", "d", 0, "stop after this long (0 plays until interrupted)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
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
	if playDuration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, playDuration)
		defer stop()
	}
	go s.Run(ctx)

	if kbs := cfg.AutoConnectKeyboards(); len(kbs) > 0 {
		names := make([]string, len(kbs))
		targets := make(map[string]string, len(kbs))
		for i, kb := range kbs {
			names[i] = kb.PortName
			targets[kb.PortName] = kb.Target
		}
		dm := midi.NewDeviceManager(names)
		go dm.Run(ctx)
		go s.FollowKeyboards(ctx, dm, targets)
	}

	if err := s.Start(ctx, playScene); err != nil {
		return err
	}
	snap := s.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "playing %s at %d bpm in %s\n", snap.Drums.PatternName, snap.Drums.BPM, snap.Harmony.Key)

	<-ctx.Done()
	s.StopAll()
	return nil
}
