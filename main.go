package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/surveyview/checkpoint"
	"github.com/danielhkuo/surveyview/cliparse"
	"github.com/danielhkuo/surveyview/db"
	"github.com/danielhkuo/surveyview/logging"
	"github.com/danielhkuo/surveyview/menu"
	"github.com/danielhkuo/surveyview/query"
	"github.com/danielhkuo/surveyview/reconcile"
)

var version = "v0.1.0"

var (
	cfg        cliparse.Config
	logCloser  io.Closer
	accessible bool
)

var rootCmd = &cobra.Command{
	Use:   "surveyview",
	Short: "Keep the all-survey-data view in step with live survey answers",
	Long: `surveyview builds a one-row-per-(user, survey) dataset from the survey
tables, exports it, and rebuilds the persisted view only when the data has
changed since the last checkpoint.

Run without a subcommand for the interactive menu.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cliparse.Resolve(cmd.Flags(), &cfg); err != nil {
			return err
		}

		closer, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cmd.OutOrStdout(), func(a *app) error {
			prompter := menu.NewHuhPrompter(accessible)
			return menu.New(a.reconciler, a.executor, prompter, cmd.OutOrStdout(), version).Run(cmd.Context())
		})
	},
}

func init() {
	cliparse.AddFlags(rootCmd.PersistentFlags(), &cfg)
	rootCmd.Flags().BoolVar(&accessible, "accessible", os.Getenv("ACCESSIBLE") != "", "Plain line prompts instead of the TUI menu")
}

// app bundles what every command needs once configuration is resolved
type app struct {
	store      *db.Store
	executor   *query.Executor
	reconciler *reconcile.Reconciler
}

// withApp opens the store, wires the reconciler and runs fn. The reconciler's
// status lines go to status: stdout for the menu, stderr for commands whose
// stdout may carry CSV.
func withApp(cmd *cobra.Command, status io.Writer, fn func(a *app) error) error {
	store, err := db.Open(cmd.Context(), cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	exec := query.NewExecutor(store)
	rec, err := reconcile.New(exec, checkpoint.New(cfg.CheckpointPath), cfg.ViewName, status)
	if err != nil {
		return err
	}

	slog.Debug("store opened", "type", store.Type(), "view", cfg.ViewName)
	return fn(&app{store: store, executor: exec, reconciler: rec})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		if db.IsConnectionError(err) {
			fmt.Fprintln(os.Stderr, "Could not reach the database. Check DATABASE_URL or [db_connection] in config.toml.")
		}
		fmt.Fprintf(os.Stderr, "Sorry about it: %v\n", err)
		os.Exit(1)
	}
}
