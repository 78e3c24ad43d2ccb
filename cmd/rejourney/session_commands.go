package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rejourney/internal/ipc"
	"rejourney/internal/session"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage archived sessions",
	}

	sessionCmd.AddCommand(newSessionListCommand(ctx))
	sessionCmd.AddCommand(newSessionShowCommand(ctx))
	sessionCmd.AddCommand(newSessionIngestCommand(ctx))
	sessionCmd.AddCommand(newSessionDeleteCommand(ctx))
	sessionCmd.AddCommand(newSessionTimelineCommand(ctx))
	sessionCmd.AddCommand(newSessionDensityCommand(ctx))

	return sessionCmd
}

func newSessionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionList()
				if err != nil {
					return err
				}
				if len(resp.Sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Archive is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Start", "Duration", "Events", "Frames", "Crashes", "Rage Taps"},
					buildSessionRows(resp.Sessions),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show details for one archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionDescribe(args[0])
				if err != nil {
					return err
				}
				sm := resp.Summary
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Session "+sm.ID, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Start", statusInfo, formatEpochMillis(sm.StartTime), colorize))
				fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, formatSeconds(sm.DurationSeconds), colorize))
				fmt.Fprintln(out, renderStatusLine("Events", statusInfo, strconv.Itoa(sm.EventCount), colorize))
				fmt.Fprintln(out, renderStatusLine("Frames", statusInfo, strconv.Itoa(sm.FrameCount), colorize))
				crashKind := statusOK
				if sm.CrashCount > 0 {
					crashKind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Crashes", crashKind, strconv.Itoa(sm.CrashCount), colorize))
				rageKind := statusOK
				if sm.RageTapCount > 0 {
					rageKind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Rage taps", rageKind, strconv.Itoa(sm.RageTapCount), colorize))
				return nil
			})
		},
	}
}

func newSessionIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <payload.json>",
		Short: "Archive a captured session payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionIngest(payload)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived session %s (%d events, %d frames)\n",
					resp.Summary.ID, resp.Summary.EventCount, resp.Summary.FrameCount)
				return nil
			})
		},
	}
}

func newSessionDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Remove an archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SessionDelete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
				return nil
			})
		},
	}
}

func newSessionTimelineCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "timeline <session-id>",
		Short: "Show the normalized event timeline for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Timeline(args[0])
				if err != nil {
					return err
				}
				if len(resp.Events) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Timeline is empty")
					return nil
				}
				events := resp.Events
				if limit > 0 && len(events) > limit {
					events = events[:limit]
				}
				table := renderTable(
					[]string{"Timestamp", "Type", "Detail"},
					buildTimelineRows(events),
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				if limit > 0 && len(resp.Events) > limit {
					fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d events\n", limit, len(resp.Events))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of events to display (0 for all)")
	return cmd
}

func newSessionDensityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "density <session-id>",
		Short: "Show the timeline density strip for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Density(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Touches: %s\n", renderDensityBar(resp.Strip.TouchDensity))
				fmt.Fprintf(out, "API:     %s\n", renderDensityBar(resp.Strip.APIDensity))
				return nil
			})
		},
	}
}

// renderDensityBar maps normalized bucket values onto block glyphs so the
// strip reads left to right like the session timeline.
func renderDensityBar(values []float64) string {
	glyphs := []rune(" ▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		idx := int(v * float64(len(glyphs)-1))
		b.WriteRune(glyphs[idx])
	}
	return b.String()
}

func buildSessionRows(summaries []ipc.SessionSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, sm := range summaries {
		rows = append(rows, []string{
			sm.ID,
			formatEpochMillis(sm.StartTime),
			formatSeconds(sm.DurationSeconds),
			strconv.Itoa(sm.EventCount),
			strconv.Itoa(sm.FrameCount),
			strconv.Itoa(sm.CrashCount),
			strconv.Itoa(sm.RageTapCount),
		})
	}
	return rows
}

func buildTimelineRows(events []session.Event) [][]string {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			formatEpochMillis(ev.Timestamp),
			displayLabel(ev.Type),
			timelineDetail(ev),
		})
	}
	return rows
}

func timelineDetail(ev session.Event) string {
	switch ev.Type {
	case session.TypeGesture, session.TypeTouch:
		parts := make([]string, 0, 2)
		if ev.GestureType != "" {
			parts = append(parts, displayLabel(ev.GestureType))
		}
		if ev.HasTouches() {
			tp := ev.FirstTouch()
			parts = append(parts, fmt.Sprintf("(%.0f, %.0f)", tp.X, tp.Y))
		}
		return strings.Join(parts, " ")
	case session.TypeRageTap:
		return "Repeated taps in one spot"
	default:
		return ev.Name
	}
}

func formatEpochMillis(millis int64) string {
	if millis <= 0 {
		return "-"
	}
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04:05.000")
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return d.Truncate(100 * time.Millisecond).String()
}
