package cmd

import (
	"fmt"

	"equalizer/internal/audio"
	"equalizer/internal/tui"

	"github.com/spf13/cobra"
)

func (a *app) newListCommand() *cobra.Command {
	var interactive bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				chosen, err := tui.StartDeviceListUI(a.cfg.Audio)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "--device %d --frames-per-buffer %d --low-latency=%t\n",
					chosen.OutputDevice, chosen.FramesPerBuffer, chosen.LowLatency)
				return nil
			}

			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()
			return audio.ListDevices(cmd.OutOrStdout())
		},
	}
	listCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick a device and print the flags that select it")
	return listCmd
}
