// Command fias-ingest is the CLI driver of spec.md §4.10: a Cobra
// tree exposing run/ping/stats/serve subcommands over the address graph
// builder core. Grounded on the teacher's cmd/matcher/main.go (a
// package-level DB connection, rootCmd.AddCommand(...), a ping
// subcommand that counts rows).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gmorong/fias-ingest/internal/config"
	"github.com/gmorong/fias-ingest/internal/ingesterr"
	"github.com/gmorong/fias-ingest/internal/pipeline"
	"github.com/gmorong/fias-ingest/internal/stats"
	"github.com/gmorong/fias-ingest/internal/storage"
	"github.com/gmorong/fias-ingest/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fias-ingest",
		Short: "FIAS/GAR address graph builder",
		Long:  "Ingests FIAS/GAR bulk XML for one region into a normalized address graph.",
	}

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createPingCmd())
	rootCmd.AddCommand(createStatsCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ingesterr.ExitCode(err))
	}
}

func createRunCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the address graph build end to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				opts.Debug = debug
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			notifyOnSignal(cancel)

			summary, err := pipeline.Run(ctx, opts, opts.XMLDirectory)
			if err != nil {
				return err
			}

			fmt.Println(summary.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "log per-stage timing to stderr")
	return cmd
}

func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity and print row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.FromEnv()
			if err != nil {
				return err
			}

			db, err := storage.Open(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Println("Database connection successful!")

			counts, err := db.ReadCounts()
			if err != nil {
				return err
			}
			fmt.Printf("municipalities: %d\n", counts.Municipalities)
			fmt.Printf("settlements:    %d\n", counts.Settlements)
			fmt.Printf("streets:        %d\n", counts.Streets)
			fmt.Printf("houses:         %d\n", counts.Houses)
			fmt.Printf("land_plots:     %d\n", counts.LandPlots)
			return nil
		},
	}
}

func createStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the last run's statistics record",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.FromEnv()
			if err != nil {
				return err
			}

			db, err := storage.Open(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			summary, err := stats.LoadOrCompute(db)
			if err != nil {
				return err
			}
			fmt.Println(summary.String())
			return nil
		},
	}
}

func createServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the read-only status server (healthz, stats)",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.FromEnv()
			if err != nil {
				return err
			}

			db, err := storage.Open(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := web.NewServer(addr, db)
			return srv.Start()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	return cmd
}

func notifyOnSignal(cancel context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
}
