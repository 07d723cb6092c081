package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthops/observe"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the health endpoints and run the publisher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lis, err := net.Listen("tcp", cfg.HTTP.Addr)
			if err != nil {
				_ = a.close(context.Background())
				return err
			}
			return a.serve(ctx, lis)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

// serve runs the HTTP server, the startup gate and the publisher until ctx
// is canceled, then shuts everything down.
func (a *app) serve(ctx context.Context, lis net.Listener) error {
	log := a.logger()
	srv := &http.Server{
		Handler:           a.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "listening", observe.F("addr", lis.Addr().String()))
		if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if gate := a.comps.Gate; gate != nil {
		done := gate.CompleteAfter(gctx, a.cfg.Startup.Delay)
		g.Go(func() error {
			<-done
			if gate.Completed() {
				log.Info(gctx, "startup complete", observe.F("gate", gate.Name()))
			}
			return nil
		})
	}

	if pub := a.comps.Publisher; pub != nil {
		g.Go(func() error {
			return pub.Run(gctx)
		})
	}

	err := g.Wait()
	log.Info(context.Background(), "shutting down")

	closeCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return errors.Join(err, a.close(closeCtx))
}
