package main

import (
	"context"
	"net/http"
	"time"

	"github.com/bluescreen10/apistore"
	"github.com/bluescreen10/apistore/cookiestore"
	"github.com/bluescreen10/apistore/internal/config"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cookie storage over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root)
		},
	}

	cmd.Flags().String("listen", "localhost:8080", "address to listen on")
	_ = root.v.BindPFlag("listen_address", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(ctx context.Context, root *rootOptions) error {
	cfg, err := config.Load(root.v, root.cfgFile)
	if err != nil {
		return err
	}

	logger := cfg.Logger()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Storages register before the registry exists; draining applies them
	// in registration order.
	if err := cookiestore.Register(cfg.Cookie.Options(logger, promReg)...); err != nil {
		return err
	}

	reg := apistore.NewRegistry()
	n := apistore.DrainDeferred(reg)
	apistore.SetDefault(reg)
	logger.WithField("storages", reg.IDs()).Debugf("%d deferred registrations applied", n)

	storage, err := reg.New(cookiestore.ID)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           newHandler(storage, logger, promReg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", cfg.ListenAddress).Info("apistore listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
		logger.Info("got TERM signal, exiting...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
