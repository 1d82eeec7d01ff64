package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/mock"
)

func newMockCmd(a *app) *cobra.Command {
	var (
		addr       string
		latency    time.Duration
		errorRate  float64
		corsOrigin string
		seed       bool
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run an in-memory backend for demos and testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if errorRate < 0 || errorRate > 1 {
				return fmt.Errorf("--error-rate must be between 0 and 1, got %v", errorRate)
			}
			s := mock.New(
				mock.WithLogger(a.logger.Named("mock")),
				mock.WithLatency(latency),
				mock.WithErrorRate(errorRate),
				mock.WithCORSOrigin(corsOrigin),
				mock.WithMaxUpload(a.cfg.MaxFileBytes()+1<<20),
			)
			if seed {
				s.Seed()
			}
			srv := s.HTTPServer(addr)

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			fmt.Fprintf(a.stderr, "Mock API listening on http://%s/api\n", addr)

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.logger.Info("shutting down mock server", zap.String("addr", addr))
			return srv.Shutdown(ctx)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&addr, "addr", "127.0.0.1:3000", "listen address")
	fl.DurationVar(&latency, "latency", 0, "delay added to every response")
	fl.Float64Var(&errorRate, "error-rate", 0, "fraction of requests that fail with 500, 0..1")
	fl.StringVar(&corsOrigin, "cors-origin", "*", "Access-Control-Allow-Origin value")
	fl.BoolVar(&seed, "seed", true, "load demo companies, contracts and files")
	return cmd
}
