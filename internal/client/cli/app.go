package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/medicnote/internal/client/config"
	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/iocli"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage/boltdb"
)

// Open builds the client from cfg: local BoltDB store, HTTP gateway and the
// sync engine on top
func Open(ctx context.Context, cfg *config.Config, io iocli.IO, logger *slog.Logger) (*Cli, error) {
	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	state := session.New()
	httpGateway := gateway.NewHTTP(cfg.Server, state, cfg.Timeout)

	c := newCli(io, components{
		store:         store,
		gateway:       httpGateway,
		authAPI:       httpGateway,
		state:         state,
		probeInterval: cfg.ProbeInterval,
	}, logger)

	closeReports := c.close
	c.close = func() error {
		_ = closeReports()
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
			return err
		}
		return nil
	}
	return c, nil
}
