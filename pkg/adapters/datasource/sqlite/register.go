package sqlite

import (
	"context"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.AdapterInfo{
			Type:        "sqlite",
			DisplayName: "SQLite",
			Description: "SQLite database files via the modernc driver",
		},
		Connect: func(ctx context.Context, dsn string, logger *zap.Logger) (datasource.Connector, error) {
			return NewConnector(ctx, dsn, logger)
		},
	})
}
