package evidence

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/jsonutil"
	"github.com/schemalens/schemalens-engine/pkg/llm"
)

// ToolExecutor implements llm.ToolExecutor for the enrichment tool set.
type ToolExecutor struct {
	searcher *Searcher
	logger   *zap.Logger
}

// NewToolExecutor creates a tool executor backed by the given searcher.
func NewToolExecutor(searcher *Searcher, logger *zap.Logger) *ToolExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolExecutor{
		searcher: searcher,
		logger:   logger.Named("tool-executor"),
	}
}

// Ensure ToolExecutor implements llm.ToolExecutor.
var _ llm.ToolExecutor = (*ToolExecutor)(nil)

type lookupColumnUsageArgs struct {
	// Tolerant decoding: models occasionally send numeric column names
	// unquoted.
	ColumnName jsonutil.FlexibleString `json:"column_name"`
}

// ExecuteTool dispatches to the appropriate tool handler based on name.
func (e *ToolExecutor) ExecuteTool(ctx context.Context, name string, arguments string) (string, error) {
	e.logger.Debug("executing tool",
		zap.String("tool", name),
		zap.String("arguments", arguments))

	switch name {
	case "lookup_column_usage":
		return e.lookupColumnUsage(ctx, arguments)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (e *ToolExecutor) lookupColumnUsage(ctx context.Context, arguments string) (string, error) {
	var args lookupColumnUsageArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.ColumnName == "" {
		return "", fmt.Errorf("column_name is required")
	}

	return e.searcher.SearchColumnUsage(args.ColumnName.String()), nil
}
