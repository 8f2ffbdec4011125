package app

import (
	"context"
	"fmt"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/config"
	"github.com/caingletaouievyv/tasktracker-api/services/refreshtoken"
	"go.uber.org/fx"
)

// PurgeExpiredTokens deletes refresh token records that expired more than
// retention ago and returns how many were removed. It starts only the storage
// part of the graph.
func PurgeExpiredTokens(ctx context.Context, cfg *config.Config, retention time.Duration) (int64, error) {
	if retention < 0 {
		return 0, fmt.Errorf("retention must not be negative: %s", retention)
	}

	var store refreshtoken.Store
	maintenance := fx.New(storageOptions(cfg), fx.Populate(&store))
	if err := maintenance.Err(); err != nil {
		return 0, err
	}

	if err := maintenance.Start(ctx); err != nil {
		return 0, err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = maintenance.Stop(stopCtx)
	}()

	return store.PurgeExpired(ctx, time.Now().Add(-retention))
}
