package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/julienfritschheydon/doodates-scheduler/internal/calendar"
	"github.com/julienfritschheydon/doodates-scheduler/internal/engine"
	"github.com/julienfritschheydon/doodates-scheduler/internal/logging"
	"github.com/julienfritschheydon/doodates-scheduler/internal/store"
)

var (
	cfgFile string
	dbPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "doodates",
		Short: "DooDates - Find the best meeting slots from participant availability",
		Long: `DooDates computes ranked meeting slot suggestions from
participant availability windows and external calendar busy time.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.doodates/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default is $HOME/.doodates/doodates.db)")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(pollCmd())
	rootCmd.AddCommand(availabilityCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(suggestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".doodates")
		os.MkdirAll(configDir, 0755)

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.ReadInConfig()

	if dbPath == "" {
		home, _ := os.UserHomeDir()
		dbPath = filepath.Join(home, ".doodates", "doodates.db")
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the DooDates database",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			fmt.Println("✓ Initialized DooDates")
			fmt.Printf("Database: %s\n", dbPath)
			fmt.Println("\nNext steps:")
			fmt.Println("  1. Create a poll: doodates poll create --title \"Team sync\"")
			fmt.Println("  2. Add availability: doodates availability add")
			fmt.Println("  3. Get suggestions: doodates suggest --poll <id>")

			return nil
		},
	}
}

func pollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Manage polls",
	}

	var title string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			poll := &store.Poll{Title: title}
			if err := st.CreatePoll(poll); err != nil {
				return err
			}

			fmt.Printf("✓ Created poll: %s\n", title)
			fmt.Printf("  ID: %s\n", poll.ID)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "t", "", "Poll title (required)")
	createCmd.MarkFlagRequired("title")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all polls",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			polls, err := st.ListPolls()
			if err != nil {
				return err
			}

			if len(polls) == 0 {
				fmt.Println("No polls yet")
				return nil
			}

			fmt.Printf("%-38s %-30s %s\n", "ID", "TITLE", "CREATED")
			for _, p := range polls {
				fmt.Printf("%-38s %-30s %s\n", p.ID, p.Title, p.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.AddCommand(createCmd)
	cmd.AddCommand(listCmd)
	return cmd
}

func availabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Manage availability windows",
	}

	var pollID, weekday, date string
	var ranges []string

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an availability window to a poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			entry := &store.AvailabilityEntry{PollID: pollID}

			switch {
			case weekday != "":
				day, err := engine.ParseWeekday(weekday)
				if err != nil {
					return err
				}
				entry.Weekday = day
			case date != "":
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
				}
				entry.Date = d
			default:
				return fmt.Errorf("either --weekday or --date is required")
			}

			for _, r := range ranges {
				tr, err := parseRange(r)
				if err != nil {
					return err
				}
				entry.Ranges = append(entry.Ranges, tr)
			}
			if len(entry.Ranges) == 0 {
				return fmt.Errorf("at least one --range is required")
			}

			if err := st.SaveAvailability(entry); err != nil {
				return err
			}

			fmt.Printf("✓ Added availability\n  ID: %s\n", entry.ID)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&pollID, "poll", "p", "", "Poll ID (required)")
	addCmd.Flags().StringVarP(&weekday, "weekday", "w", "", "Recurring weekday (e.g. tuesday or mardi)")
	addCmd.Flags().StringVarP(&date, "date", "d", "", "Concrete date (YYYY-MM-DD)")
	addCmd.Flags().StringArrayVarP(&ranges, "range", "r", nil, "Time range HH:MM-HH:MM (repeatable)")
	addCmd.MarkFlagRequired("poll")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List availability windows for a poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.ListAvailability(pollID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}
	listCmd.Flags().StringVarP(&pollID, "poll", "p", "", "Poll ID (required)")
	listCmd.MarkFlagRequired("poll")

	cmd.AddCommand(addCmd)
	cmd.AddCommand(listCmd)
	return cmd
}

func rulesCmd() *cobra.Command {
	var pollID string
	var slotDuration, lookahead int
	var nearTerm, halfDays bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Set scheduling rules for a poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			rules := engine.Rules{
				SlotDuration:   slotDuration,
				LookaheadWeeks: lookahead,
				PreferNearTerm: nearTerm,
				PreferHalfDays: halfDays,
			}

			if err := st.SaveRules(pollID, rules); err != nil {
				return err
			}

			fmt.Println("✓ Saved rules")
			return nil
		},
	}

	cmd.Flags().StringVarP(&pollID, "poll", "p", "", "Poll ID (required)")
	cmd.Flags().IntVar(&slotDuration, "slot-duration", 0, "Slot duration in minutes (default 60)")
	cmd.Flags().IntVar(&lookahead, "lookahead", 0, "Lookahead horizon in weeks (default 4)")
	cmd.Flags().BoolVar(&nearTerm, "near-term", false, "Reward slots close to today")
	cmd.Flags().BoolVar(&halfDays, "half-days", false, "Reward contiguous half-day blocks")
	cmd.MarkFlagRequired("poll")

	return cmd
}

func suggestCmd() *cobra.Command {
	var pollID string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Compute ranked slot suggestions for a poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			entries, err := st.ListAvailability(pollID)
			if err != nil {
				return fmt.Errorf("loading availability: %w", err)
			}
			if len(entries) == 0 {
				return fmt.Errorf("no availability recorded for poll %s", pollID)
			}

			rules, err := st.GetRules(pollID)
			if err != nil {
				return fmt.Errorf("loading rules: %w", err)
			}

			availability := make([]engine.Availability, 0, len(entries))
			for _, e := range entries {
				availability = append(availability, e.Availability)
			}

			// Optional calendar bridge; the engine degrades to an empty
			// busy set when the lookup fails.
			var source engine.CalendarSource
			if calURL := viper.GetString("calendar_url"); calURL != "" {
				source = calendar.NewClient(calURL, logging.Setup(viper.GetString("environment")))
			}

			proposals := engine.OptimizeSchedule(ctx, availability, rules, source, time.Now())

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(proposals)
		},
	}

	cmd.Flags().StringVarP(&pollID, "poll", "p", "", "Poll ID (required)")
	cmd.MarkFlagRequired("poll")

	return cmd
}

func parseRange(s string) (engine.TimeRange, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return engine.TimeRange{}, fmt.Errorf("invalid range %q (use HH:MM-HH:MM)", s)
	}
	return engine.TimeRange{Start: strings.TrimSpace(parts[0]), End: strings.TrimSpace(parts[1])}, nil
}
