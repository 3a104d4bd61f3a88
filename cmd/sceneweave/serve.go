package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazu/sceneweave/internal/ui"
	"github.com/chazu/sceneweave/pkg/live"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser editor",
		Long: `Serve the node editor over HTTP. Each browser tab gets its own editor
driven over a websocket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "localhost:7331", "listen address")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string) error {
	ls := live.NewServer(a.cfg.NewEditor(a.log), a.cfg.NewEngine(a.log), a.log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           ls.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		a.log.Info("shutting down", "sessions", ls.Sessions())
		ls.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	ui.Banner(os.Stderr, "editor at http://"+addr)
	a.log.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
