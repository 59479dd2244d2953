package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"go-drummer/render"
	"go-drummer/studio"
)

var exportOpts struct {
	scene    studio.Scene
	out      string
	bars     int
	duration time.Duration
	seed     uint64
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a scene as a Standard MIDI File",
	Long: `Record a scene and write one MIDI track per voice, on the channels from the
config file.

Example:
  drummer export --genre funk --key A --progression funk-vamp --groove funk_octave -o funk.mid`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	sceneFlags(f, &exportOpts.scene)
	f.StringVarP(&exportOpts.out, "output", "o", "drummer.mid", "output file")
	f.IntVar(&exportOpts.bars, "bars", 8, "length in 4/4 bars at the scene tempo")
	f.DurationVarP(&exportOpts.duration, "duration", "d", 0, "length; overrides --bars")
	f.Uint64Var(&exportOpts.seed, "seed", 1, "melody generator seed")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	o := exportOpts
	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	defer f.Close()

	err = render.MIDI(context.Background(), f, render.Options{
		Scene:    o.scene,
		Duration: sceneLength(o.scene, o.bars, o.duration),
		Seed:     o.seed,
	}, cfg.Channel)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", o.out)
	return f.Close()
}
