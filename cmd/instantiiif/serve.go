package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/greut/instantiiif/cache"
	"github.com/greut/instantiiif/config"
	"github.com/greut/instantiiif/iiif"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve object descriptions and thumbnails over HTTP",
		Example: `  # Start with the configured host and port
  instantiiif serve --config instantiiif.toml

  # Override the port
  instantiiif serve --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			c := configFromContext(ctx)

			if cmd.Flags().Changed("host") {
				c.Host = host
			}
			if cmd.Flags().Changed("port") {
				c.Port = port
			}

			repo, closer, err := newRepo(c, logger)
			if err != nil {
				return err
			}
			defer closer()

			mux := http.NewServeMux()
			mux.Handle("/", iiif.NewHandler(repo, &iiif.ServerConfig{MaxAge: c.Cache.HTTP}, logger))
			if c.Cache.Backend == config.BackendGroupcache {
				self := fmt.Sprintf("http://%s", c.Addr())
				mux.Handle("/_groupcache/", cache.ServePeers(self, c.Cache.Peers...))
				logger.Debug("groupcache peers", "self", self, "peers", c.Cache.Peers)
			}

			server := &http.Server{
				Addr:    c.Addr(),
				Handler: mux,
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("server running", "addr", c.Addr(), "providers", len(repo.Providers()))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("server shutdown failed", "err", err)
					return err
				}
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host to listen on")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on")

	return cmd
}
