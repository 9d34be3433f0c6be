package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authorization server",
	Long:  `Starts the HTTP server exposing role management, privilege management, and enforcement endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := cmdutil.NewAuthorizerBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		log.Printf("Connected to database")

		// Background refresh keeps the group→role cache current when another
		// instance mutates assignments against the shared store.
		refreshInterval := 5 * time.Minute
		if intervalEnv := os.Getenv("CACHE_REFRESH_INTERVAL"); intervalEnv != "" {
			if dur, err := time.ParseDuration(intervalEnv); err == nil {
				refreshInterval = dur
				log.Printf("Using custom cache refresh interval: %v", refreshInterval)
			} else {
				log.Printf("WARNING: Invalid CACHE_REFRESH_INTERVAL '%s', using default 5m", intervalEnv)
			}
		}

		cacheCtx, cancelCache := context.WithCancel(cmd.Context())
		defer cancelCache()
		go func() {
			ticker := time.NewTicker(refreshInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if err := bundle.Binding.RefreshCache(cacheCtx); err != nil {
						log.Printf("ERROR: Background cache refresh failed: %v", err)
					} else {
						snapshot := bundle.Binding.CacheSnapshot()
						log.Printf("INFO: Background cache refreshed (version=%d, groups=%d)",
							snapshot.Version, len(snapshot.Mappings))
					}
				case <-cacheCtx.Done():
					log.Printf("INFO: Stopping background cache refresh")
					return
				}
			}
		}()

		healthHandler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"status":"ok","instance":%q}`, cfg.InstanceName)
		}

		r := server.NewRouter(server.RouterOptions{
			Authorizer:    bundle.Authorizer,
			Admin:         bundle.Binding,
			HealthHandler: healthHandler,
		})

		srv := &http.Server{
			Addr:              cfg.ServerAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Listening on %s", cfg.ServerAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-stop:
			log.Printf("Received %s, shutting down", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		log.Printf("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
