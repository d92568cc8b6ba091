package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"libadmin/config"
	"libadmin/internal/backup"
	"libadmin/internal/handler"
	"libadmin/internal/locale"
	"libadmin/internal/timeouts"
	"libadmin/pkg/backend"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin web client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := backend.Connect(ctx, cfg, log.Default())
	if err != nil {
		return fmt.Errorf("connect backend: %w", err)
	}

	var source locale.Source = locale.FSSource{FS: locale.Embedded}
	if cfg.Locale.URL != "" {
		source = locale.HTTPSource{BaseURL: cfg.Locale.URL, Client: &http.Client{Timeout: cfg.Backend.Timeout}}
	}

	h, err := handler.NewHandler(client, locale.NewProvider(source), backup.NewStore(), cfg.Locale.DefaultLanguage)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("✅ libadmin listening on %s (%s)", cfg.Server.Addr, cfg.Server.Env)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
