package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"go-drummer/midi"
)

var pollPorts bool

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	Long: `List MIDI input and output ports. Use an output name (or part of it) with
--backend midi --port, and an input name in the keyboards section of the config.

With --poll, keep watching and report ports as they come and go.`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	portsCmd.Flags().BoolVar(&pollPorts, "poll", false, "watch for hot-plugged ports until interrupted")
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "(waiting up to 3 seconds...)")
	ins, outs, err := midi.PortNames(context.Background())
	if errors.Is(err, midi.ErrScanTimeout) {
		fmt.Fprintln(out, "TIMEOUT! The MIDI driver is hung.")
		fmt.Fprintln(out, "Fix on macOS: sudo killall coreaudiod midiserver")
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Fprintf(out, "  %d: %s\n", i, p)
	}
	fmt.Fprintln(out, "\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Fprintf(out, "  %d: %s\n", i, p)
	}
	if !pollPorts {
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()
	fmt.Fprintln(out, "\nPolling for device changes (Ctrl+C to stop)...")
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now, _, err := midi.PortNames(ctx)
			if err != nil {
				continue
			}
			for _, p := range now {
				if !slices.Contains(ins, p) {
					fmt.Fprintf(out, "[+] %s\n", p)
				}
			}
			for _, p := range ins {
				if !slices.Contains(now, p) {
					fmt.Fprintf(out, "[-] %s\n", p)
				}
			}
			ins = now
		}
	}
}
