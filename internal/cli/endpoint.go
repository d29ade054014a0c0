package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/isq-24/weekly-planner/internal/endpoint"
	"github.com/isq-24/weekly-planner/internal/store"

	"github.com/spf13/cobra"
)

func newEndpointCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Local stand-in for the remote script",
	}

	var (
		addr   string
		dbPath string
		quiet  bool
	)
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the remote script contract backed by SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dbPath) == "" {
				dir, err := store.ConfigDir()
				if err != nil {
					return err
				}
				dbPath = filepath.Join(dir, "endpoint.sqlite")
			}
			if dbPath != ":memory:" {
				if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ws, err := store.OpenWeekStore(ctx, dbPath)
			if err != nil {
				return err
			}
			defer ws.Close()

			cfg := endpoint.ServerConfig{Store: ws}
			if !quiet {
				cfg.Log = cmd.ErrOrStderr()
			}
			srv, err := endpoint.NewServer(cfg)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			httpSrv := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "endpoint: http://%s%s (db %s)\n", ln.Addr(), endpoint.Path, dbPath)
			fmt.Fprintf(cmd.ErrOrStderr(), "endpoint: try `planner config set endpoint http://%s%s`\n", ln.Addr(), endpoint.Path)

			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.Serve(ln) }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			}
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Listen address")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite path (default <config dir>/endpoint.sqlite)")
	serveCmd.Flags().BoolVar(&quiet, "quiet", false, "Disable request logging")

	cmd.AddCommand(serveCmd)
	return cmd
}
