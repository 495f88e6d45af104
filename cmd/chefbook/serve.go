package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/chefbook"
	"github.com/eringen/chefbook/views"
)

var (
	serveAddr   string
	serveStatic string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recipe gallery",
	Long: `Start the web app. Configuration is read from the environment and an
optional .env file; SESSION_SECRET is required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := chefbook.LoadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if cfg.SessionSecret == "" {
			return errors.New("SESSION_SECRET must be set")
		}

		app := chefbook.New(cfg, views.Default(), chefbook.WithStaticDir(serveStatic))
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- app.Start() }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		app.Echo.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Echo.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errc
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides ADDR)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "public", "directory served under /public")
}
