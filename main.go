package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"focustui/internal"
	"focustui/internal/session"
	"focustui/internal/settings"
	"focustui/internal/stats"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "focustui",
		Short:         "Focus timer with session analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(dataDir)
		},
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory for the session database and settings")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir))
	root.AddCommand(newTagCmd(&dataDir))
	root.AddCommand(newSessionsCmd(&dataDir))
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focustui"
	}
	return filepath.Join(home, ".focustui")
}

func openStores(dataDir string) (*session.Store, *settings.Store, error) {
	local, err := settings.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open data dir: %w", err)
	}
	store, err := session.Open(filepath.Join(dataDir, "focustui.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return store, local, nil
}

func runTUI(dataDir string) error {
	store, local, err := openStores(dataDir)
	if err != nil {
		return err
	}

	m, err := internal.NewModel(store, local)
	if err != nil {
		store.Close()
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			p.Send(internal.MsgTick{})
		}
	}()

	// The store pushes a full snapshot on every change; forward it into
	// the program off the caller's goroutine so an append made inside
	// Update cannot block on its own notification.
	cancel, err := store.Subscribe(func(records []session.Record) {
		go p.Send(internal.MsgSessions{Records: records})
	})
	if err != nil {
		return err
	}
	defer cancel()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive focus timer",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(*dataDir)
		},
	}
}

func newStatsCmd(dataDir *string) *cobra.Command {
	statsCmd := &cobra.Command{Use: "stats", Short: "Print aggregated focus statistics"}

	loadSessions := func() ([]session.Record, func(), error) {
		store, _, err := openStores(*dataDir)
		if err != nil {
			return nil, nil, err
		}
		records, err := store.All(context.Background())
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return records, func() { store.Close() }, nil
	}

	overviewCmd := &cobra.Command{
		Use:   "overview",
		Short: "Lifetime and today totals with streaks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, done, err := loadSessions()
			if err != nil {
				return err
			}
			defer done()
			ov := stats.Overview(records, time.Now())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "today:    %.0f min, %d sessions\n", ov.Today.Minutes, ov.Today.Sessions)
			fmt.Fprintf(out, "lifetime: %.0f min, %d sessions, %d active days\n",
				ov.Lifetime.Minutes, ov.Lifetime.Sessions, ov.Lifetime.ActiveDays)
			fmt.Fprintf(out, "streak:   %d current, %d best\n", ov.Streak.Current, ov.Streak.Best)
			return nil
		},
	}

	var dayFlag string
	dayCmd := &cobra.Command{
		Use:   "day",
		Short: "One day's sessions, timeline and tag breakdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := time.Now()
			if dayFlag != "" {
				parsed, err := time.ParseInLocation("2006-01-02", dayFlag, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", dayFlag)
				}
				target = parsed
			}
			records, done, err := loadSessions()
			if err != nil {
				return err
			}
			defer done()
			ds := stats.Day(records, target)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %.0f min, %d sessions\n", stats.DayKey(target), ds.TotalMinutes, ds.Sessions)
			for _, e := range ds.Timeline {
				fmt.Fprintf(out, "  %s  %.1f min\n", e.Label, e.Minutes)
			}
			printTagShares(cmd, ds.Tags, ds.TotalMinutes)
			return nil
		},
	}
	dayCmd.Flags().StringVar(&dayFlag, "date", "", "day to inspect (YYYY-MM-DD, default today)")

	weekCmd := &cobra.Command{
		Use:   "week",
		Short: "This week's totals against last week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, done, err := loadSessions()
			if err != nil {
				return err
			}
			defer done()
			ws := stats.Week(records, time.Now())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "week of %s: %.0f min, %d sessions (last week %.0f min)\n",
				ws.Start.Format("2006-01-02"), ws.TotalMinutes, ws.Sessions, ws.PrevMinutes)
			for _, d := range ws.Days {
				fmt.Fprintf(out, "  %s  %6.0f min  %d sessions\n", d.Date.Format("Mon"), d.Minutes, d.Sessions)
			}
			printTagShares(cmd, ws.Tags, ws.TotalMinutes)
			return nil
		},
	}

	var yearFlag int
	yearCmd := &cobra.Command{
		Use:   "year",
		Short: "A year's totals, bests and streak",
		RunE: func(cmd *cobra.Command, _ []string) error {
			year := yearFlag
			if year == 0 {
				year = time.Now().Year()
			}
			records, done, err := loadSessions()
			if err != nil {
				return err
			}
			defer done()
			ys := stats.Year(records, year, time.Local)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d: %.0f min, %d sessions, %d active days\n",
				year, ys.TotalMinutes, ys.Sessions, ys.ActiveDays)
			fmt.Fprintf(out, "avg session %.1f min, best day %.0f min, best month %.0f min, best streak %d days\n",
				ys.AvgSessionMinutes, ys.BestDayMinutes, ys.BestMonthMinutes, ys.BestStreak)
			printTagShares(cmd, ys.Tags, ys.TotalMinutes)
			return nil
		},
	}
	yearCmd.Flags().IntVar(&yearFlag, "year", 0, "year to inspect (default current)")

	statsCmd.AddCommand(overviewCmd, dayCmd, weekCmd, yearCmd)
	return statsCmd
}

func printTagShares(cmd *cobra.Command, shares []stats.TagShare, total float64) {
	out := cmd.OutOrStdout()
	for _, s := range shares {
		pct := 0.0
		if total > 0 {
			pct = s.Minutes / total * 100
		}
		fmt.Fprintf(out, "  %-16s %6.0f min  %3.0f%%\n", s.Name, s.Minutes, pct)
	}
}

func newTagCmd(dataDir *string) *cobra.Command {
	tagCmd := &cobra.Command{Use: "tag", Short: "Manage tags"}

	withStore := func(fn func(*session.Store, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, _, err := openStores(*dataDir)
			if err != nil {
				return err
			}
			defer store.Close()
			return fn(store, cmd, args)
		}
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: withStore(func(store *session.Store, cmd *cobra.Command, _ []string) error {
			tags, err := store.Tags(context.Background())
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-16s %s\n", t.ID, t.Name, t.Color)
			}
			return nil
		}),
	}

	var color string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(store *session.Store, cmd *cobra.Command, args []string) error {
			t, err := store.AddTag(context.Background(), args[0], color)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", t.Name, t.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&color, "color", internal.TagColorPresets[0], "display color")

	var newName, newColor string
	renameCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or recolor a tag (past sessions keep their snapshot)",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(store *session.Store, cmd *cobra.Command, args []string) error {
			tags, err := store.Tags(context.Background())
			if err != nil {
				return err
			}
			for _, t := range tags {
				if t.ID != args[0] {
					continue
				}
				if newName != "" {
					t.Name = newName
				}
				if newColor != "" {
					t.Color = newColor
				}
				if err := store.UpdateTag(context.Background(), t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", t.ID)
				return nil
			}
			return fmt.Errorf("no tag with id %s", args[0])
		}),
	}
	renameCmd.Flags().StringVar(&newName, "name", "", "new name")
	renameCmd.Flags().StringVar(&newColor, "color", "", "new color")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag (past sessions keep their snapshot)",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(store *session.Store, cmd *cobra.Command, args []string) error {
			if err := store.DeleteTag(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}

	tagCmd.AddCommand(listCmd, addCmd, renameCmd, deleteCmd)
	return tagCmd
}

func newSessionsCmd(dataDir *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent session records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStores(*dataDir)
			if err != nil {
				return err
			}
			defer store.Close()
			records, err := store.All(context.Background())
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			out := cmd.OutOrStdout()
			for _, r := range records {
				tag := "-"
				if r.Tag != nil {
					tag = r.Tag.Name
				}
				mark := " "
				if r.Completed {
					mark = "✓"
				}
				fmt.Fprintf(out, "%s %s %6.1f min  %-10s %s\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04"), mark, r.Duration, string(r.Mode), tag)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to print (0 = all)")
	return cmd
}
