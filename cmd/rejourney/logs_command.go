package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rejourney/internal/ipc"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				out := cmd.OutOrStdout()
				resp, err := client.LogTail(ipc.LogTailRequest{
					Offset: -1,
					Limit:  lines,
				})
				if err != nil {
					return err
				}
				for _, line := range resp.Lines {
					fmt.Fprintln(out, line)
				}
				if !follow {
					return nil
				}
				offset := resp.Offset
				for {
					resp, err := client.LogTail(ipc.LogTailRequest{
						Offset:     offset,
						Follow:     true,
						WaitMillis: 2000,
					})
					if err != nil {
						return err
					}
					for _, line := range resp.Lines {
						fmt.Fprintln(out, line)
					}
					offset = resp.Offset
					if cmd.Context().Err() != nil {
						return nil
					}
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new lines as they are written")
	cmd.Flags().IntVarP(&lines, "lines", "n", 100, "Number of trailing lines to show")

	return cmd
}
