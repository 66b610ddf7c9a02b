package datasource

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// AdapterInfo describes a registered adapter.
type AdapterInfo struct {
	Type        string `json:"type"`         // "postgres", "sqlserver", "sqlite"
	DisplayName string `json:"display_name"` // "PostgreSQL", "Microsoft SQL Server"
	Description string `json:"description"`
}

// Registration contains adapter info plus the factory that opens a
// Connector against a DSN.
type Registration struct {
	Info    AdapterInfo
	Connect func(ctx context.Context, dsn string, logger *zap.Logger) (Connector, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for all registered adapters.
func RegisteredAdapters() []AdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	return result
}

// GetConnectFunc returns the connect factory for a dialect, or nil if
// the dialect is not registered.
func GetConnectFunc(dialect string) func(ctx context.Context, dsn string, logger *zap.Logger) (Connector, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[dialect]; ok {
		return reg.Connect
	}
	return nil
}

// IsRegistered checks if an adapter dialect is available.
func IsRegistered(dialect string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dialect]
	return ok
}
