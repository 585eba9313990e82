package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/surveyview/middleware"
	"github.com/danielhkuo/surveyview/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve survey data over HTTP",
	Long: `Serve survey data, ad-hoc queries and view refreshes over HTTP.

POST /survey-data/refresh needs an X-Admin-Key derived from ADMIN_KEY_SALT
and the view name; without a salt refreshes are refused.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cmd.ErrOrStderr(), func(a *app) error {
			if cfg.AdminKeySalt == "" {
				slog.Warn("ADMIN_KEY_SALT not set, view refresh endpoint disabled")
			}

			mux, err := router.NewRouter(a.store, cfg)
			if err != nil {
				return err
			}

			server := &http.Server{
				Handler:           middleware.CORS(mux),
				Addr:              ":" + strconv.Itoa(cfg.Port),
				ReadHeaderTimeout: 10 * time.Second,
			}

			slog.Info("Listening", "port", cfg.Port, "view", cfg.ViewName)
			return runServer(cmd.Context(), server)
		})
	},
}

// runServer serves until ctx is done, then shuts down gracefully. It returns
// only after the shutdown goroutine has exited, including when the listener
// fails to start.
func runServer(ctx context.Context, server *http.Server) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		// Wait for Ctrl-C signal or a failed listener
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	cancel()
	<-stopped

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
