package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/julienfritschheydon/doodates-scheduler/internal/calendar"
	"github.com/julienfritschheydon/doodates-scheduler/internal/engine"
	"github.com/julienfritschheydon/doodates-scheduler/internal/logging"
	"github.com/julienfritschheydon/doodates-scheduler/internal/store"
	"github.com/julienfritschheydon/doodates-scheduler/internal/uiapi"
)

func main() {
	var port int
	var dbPath string
	var calendarURL string
	var environment string

	rootCmd := &cobra.Command{
		Use:   "doodatesd",
		Short: "DooDates scheduling API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.Setup(environment)

			if dbPath == "" {
				home, _ := os.UserHomeDir()
				dbPath = filepath.Join(home, ".doodates", "doodates.db")
			}

			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			var source engine.CalendarSource
			if calendarURL != "" {
				source = calendar.NewClient(calendarURL, log)
			}

			srv := uiapi.NewServer(st, source, log)

			addr := fmt.Sprintf(":%d", port)
			log.Info().Int("port", port).Str("db", dbPath).Msg("doodates API server starting")
			if calendarURL == "" {
				log.Info().Msg("no calendar bridge configured, suggestions run without busy data")
			}

			return http.ListenAndServe(addr, srv.Handler())
		},
	}

	rootCmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Database path")
	rootCmd.Flags().StringVar(&calendarURL, "calendar-url", "", "Calendar bridge base URL")
	rootCmd.Flags().StringVar(&environment, "env", "production", "Environment (development enables debug logging)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
