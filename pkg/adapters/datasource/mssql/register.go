package mssql

import (
	"context"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.AdapterInfo{
			Type:        "sqlserver",
			DisplayName: "SQL Server",
			Description: "Microsoft SQL Server databases via go-mssqldb",
		},
		Connect: func(ctx context.Context, dsn string, logger *zap.Logger) (datasource.Connector, error) {
			return NewConnector(ctx, dsn, logger)
		},
	})
}
