package backend

import (
	"context"
	"log"
	"net/http"

	"libadmin/config"
	"libadmin/internal/api"
	"libadmin/internal/timeouts"
)

// Connect builds the backend client and checks that the backend answers.
//
// An unreachable backend is logged, not fatal: every page reports its own
// failed calls and the backend may come up later.
func Connect(ctx context.Context, cfg *config.Config, logger *log.Logger) (*api.Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	client, err := api.NewClient(
		cfg.Backend.URL,
		&http.Client{Timeout: cfg.Backend.Timeout},
		api.WithLogger(logger),
		api.WithLoginPath(cfg.Backend.LoginPath),
	)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		logger.Printf("⚠️  Backend %s is not reachable: %v", cfg.Backend.URL, err)
		return client, nil
	}
	logger.Printf("✅ Backend reachable: %s", cfg.Backend.URL)
	return client, nil
}
