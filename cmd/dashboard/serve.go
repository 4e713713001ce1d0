package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"impactdash/internal/config"
	"impactdash/internal/container"
	"impactdash/ui"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			gin.SetMode(cfg.Server.GinMode)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := container.New(ctx, cfg, logger, container.Options{Watch: true})
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Shutdown(context.Background()); err != nil {
					logger.Error("shutdown: %v", err)
				}
			}()

			server, err := ui.NewServer(ui.Dependencies{
				Chat:         c.Chat,
				News:         c.News,
				Newsletter:   c.Newsletter,
				Dashboard:    c.Dashboard,
				Usage:        c.Usage,
				Auth:         c.Auth,
				SecureCookie: cfg.Auth.SecureCookie,
				Logger:       logger,
			})
			if err != nil {
				return err
			}
			return server.Start(ctx, net.JoinHostPort("", cfg.Server.Port))
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides PORT)")
	return cmd
}
