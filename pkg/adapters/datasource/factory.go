package datasource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/apperrors"
)

// ConnectorFactory opens dialect-specific connectors from the registry.
// The extractor calls Connect once per worker so every worker owns an
// isolated introspection handle.
type ConnectorFactory interface {
	// Connect opens a new Connector for the given dialect and DSN.
	Connect(ctx context.Context, dialect, dsn string) (Connector, error)

	// ListTypes returns info for all registered adapter dialects.
	ListTypes() []AdapterInfo
}

type registryFactory struct {
	logger *zap.Logger
}

// NewConnectorFactory returns a factory backed by the global registry.
func NewConnectorFactory(logger *zap.Logger) ConnectorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &registryFactory{logger: logger}
}

func (f *registryFactory) Connect(ctx context.Context, dialect, dsn string) (Connector, error) {
	connect := GetConnectFunc(dialect)
	if connect == nil {
		return nil, fmt.Errorf("%w: %s (not compiled in)", apperrors.ErrUnsupportedDialect, dialect)
	}
	return connect(ctx, dsn, f.logger)
}

func (f *registryFactory) ListTypes() []AdapterInfo {
	return RegisteredAdapters()
}

// Ensure registryFactory implements ConnectorFactory at compile time.
var _ ConnectorFactory = (*registryFactory)(nil)
