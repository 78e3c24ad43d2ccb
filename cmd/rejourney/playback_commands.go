package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rejourney/internal/ipc"
	"rejourney/internal/playback"
)

func newPlaybackCommand(ctx *commandContext) *cobra.Command {
	playbackCmd := &cobra.Command{
		Use:   "playback",
		Short: "Control replay of the loaded session",
	}

	playbackCmd.AddCommand(newPlaybackLoadCommand(ctx))
	playbackCmd.AddCommand(newPlaybackUnloadCommand(ctx))
	playbackCmd.AddCommand(newPlaybackTransportCommand(ctx, "play", "Resume playback", func(c *ipc.Client) (*ipc.PlaybackResponse, error) {
		return c.Play()
	}))
	playbackCmd.AddCommand(newPlaybackTransportCommand(ctx, "pause", "Pause playback", func(c *ipc.Client) (*ipc.PlaybackResponse, error) {
		return c.Pause()
	}))
	playbackCmd.AddCommand(newPlaybackTransportCommand(ctx, "restart", "Rewind to the beginning and play", func(c *ipc.Client) (*ipc.PlaybackResponse, error) {
		return c.Restart()
	}))
	playbackCmd.AddCommand(newPlaybackTransportCommand(ctx, "state", "Show the current clock state", func(c *ipc.Client) (*ipc.PlaybackResponse, error) {
		return c.State()
	}))
	playbackCmd.AddCommand(newPlaybackSeekCommand(ctx))
	playbackCmd.AddCommand(newPlaybackSkipCommand(ctx))
	playbackCmd.AddCommand(newPlaybackRateCommand(ctx))
	playbackCmd.AddCommand(newPlaybackScrubCommand(ctx))
	playbackCmd.AddCommand(newPlaybackOverlayCommand(ctx))

	return playbackCmd
}

func newPlaybackLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <session-id>",
		Short: "Load an archived session for replay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Load(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded session %s (%s)\n",
					resp.SessionID, formatSeconds(resp.State.Duration))
				return nil
			})
		},
	}
}

func newPlaybackUnloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unload",
		Short: "Discard the loaded session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Unload(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session unloaded")
				return nil
			})
		},
	}
}

func newPlaybackTransportCommand(ctx *commandContext, use, short string, call func(*ipc.Client) (*ipc.PlaybackResponse, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := call(client)
				if err != nil {
					return err
				}
				printPlaybackState(cmd, resp)
				return nil
			})
		},
	}
}

func newPlaybackSeekCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seek <seconds>",
		Short: "Jump to an absolute position in seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid seek position %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Seek(seconds)
				if err != nil {
					return err
				}
				printPlaybackState(cmd, resp)
				return nil
			})
		},
	}
}

func newPlaybackSkipCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <seconds>",
		Short: "Move by a relative number of seconds (negative rewinds)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid skip amount %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Skip(seconds)
				if err != nil {
					return err
				}
				printPlaybackState(cmd, resp)
				return nil
			})
		},
	}
}

func newPlaybackRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <multiplier>",
		Short: "Change the playback speed multiplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetRate(rate)
				if err != nil {
					return err
				}
				printPlaybackState(cmd, resp)
				return nil
			})
		},
	}
}

func newPlaybackScrubCommand(ctx *commandContext) *cobra.Command {
	var end bool
	cmd := &cobra.Command{
		Use:   "scrub",
		Short: "Suspend clock advancement while dragging the timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Scrub(!end)
				if err != nil {
					return err
				}
				printPlaybackState(cmd, resp)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&end, "end", false, "End scrubbing and resume normal ticking")
	return cmd
}

func newPlaybackOverlayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "overlay",
		Short: "Show the gesture overlay at the current position",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Overlay()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resp.Touches) == 0 {
					fmt.Fprintln(out, "No visible touches")
					return nil
				}
				rows := make([][]string, 0, len(resp.Touches))
				for _, touch := range resp.Touches {
					point := ""
					if len(touch.Touches) > 0 {
						point = fmt.Sprintf("(%.0f, %.0f)", touch.Touches[0].X, touch.Touches[0].Y)
					}
					rows = append(rows, []string{touch.ID, displayLabel(touch.GestureType), point})
				}
				table := renderTable(
					[]string{"ID", "Gesture", "Position"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func printPlaybackState(cmd *cobra.Command, resp *ipc.PlaybackResponse) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
		resp.SessionID, formatPlaybackPosition(resp.State), playbackStateLabel(resp.State))
}

func formatPlaybackPosition(state playback.State) string {
	return fmt.Sprintf("%s / %s (frame %d)",
		formatSeconds(state.CurrentTime), formatSeconds(state.Duration), state.FrameIndex)
}

func playbackStateLabel(state playback.State) string {
	switch {
	case state.Scrubbing:
		return "scrubbing"
	case state.Playing:
		return fmt.Sprintf("playing at %gx", state.Rate)
	default:
		return "paused"
	}
}
