package postgres

import (
	"context"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.AdapterInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Description: "PostgreSQL databases via pgx",
		},
		Connect: func(ctx context.Context, dsn string, logger *zap.Logger) (datasource.Connector, error) {
			return NewConnector(ctx, dsn, logger)
		},
	})
}
