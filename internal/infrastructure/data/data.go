// Package data owns the storage resources selected by data.driver.
package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"
	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/database"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Data wraps the storage clients. Exactly one of Pool and Memory is set.
type Data struct {
	Driver string
	Pool   *pgxpool.Pool
	Memory *contract.MemoryStore
}

// NewData constructs storage resources and returns a cleanup function.
func NewData(ctx context.Context, c *configloader.Data, retention contract.Retention, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil {
		return nil, nil, errors.New("data configuration is required")
	}

	switch c.Driver {
	case configloader.DriverMemory:
		helper.Warn("using in-memory contract store: state is lost on restart")
		store := contract.NewMemoryStore(contract.WithMinTTL(retention.ExtendTo))
		return &Data{Driver: c.Driver, Memory: store}, func() {
			helper.Info("closing the data resources")
		}, nil
	case configloader.DriverPostgres, "":
		pool, cleanupPool, err := database.NewPgxPool(ctx, &c.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return &Data{Driver: configloader.DriverPostgres, Pool: pool}, func() {
			helper.Info("closing the data resources")
			cleanupPool()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported data driver %q", c.Driver)
	}
}

// Ready reports whether the backing store can serve requests.
func (d *Data) Ready(ctx context.Context) error {
	if d == nil {
		return errors.New("data not initialized")
	}
	if d.Pool == nil {
		return nil
	}
	_, err := database.HealthCheck(ctx, d.Pool)
	return err
}
