package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jaminalder/codex-gomoku/internal/app"
	"github.com/jaminalder/codex-gomoku/internal/config"
	"github.com/jaminalder/codex-gomoku/internal/web"
)

// gomoku serve
func Serve(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game to a browser",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`serve starts an HTTP server hosting the game. Open the
			address in a browser and press "New game"; both players use
			the same page.

			Games live in memory only and are dropped once idle for the
			configured session-ttl.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				conf.HTTPAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, conf)
		},
	}
	cmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides http-addr)")
	return cmd
}

func serve(ctx context.Context, conf *config.Config) error {
	log := logrus.WithField("component", "server")

	svc := app.NewService(app.WithTTL(conf.SessionTTL), app.WithLogger(logrus.StandardLogger()))
	go svc.RunJanitor(ctx, conf.SweepInterval)

	srv := &http.Server{
		Addr:              conf.HTTPAddr,
		Handler:           web.NewServer(svc, web.WithHeartbeat(conf.HeartbeatInterval)),
		ReadHeaderTimeout: 10 * time.Second,
		// open event streams end when ctx is done
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", conf.HTTPAddr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
