// Package enrich drives the model conversation that layers business
// meaning onto an extracted schema.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/llm"
	"github.com/schemalens/schemalens-engine/pkg/models"
	"github.com/schemalens/schemalens-engine/pkg/retry"
)

const systemPromptTemplate = `You are a Data Architect. Generate a JSON Data Dictionary.

INPUT: %s

RULES:
1. Output strictly valid JSON. No markdown formatting.
2. REQUIRED: If a column is ambiguous (like 'val_x', 'id', 'status'), call 'lookup_column_usage'.
3. Iterate until you have evidence for all ambiguous columns.
4. When done, output the JSON.

JSON STRUCTURE:
{
    "Table_Name": {
        "columns": {
            "Column_Name": {
                "description": "Business definition...",
                "tags": ["PII", "System"]
            }
        }
    }
}`

// loopState is the conversation driver's state. Each turn either waits
// on the model or feeds requested tool results back.
type loopState int

const (
	stateAwaitModel loopState = iota
	stateInvokeTools
	stateDone
)

// Orchestrator runs the bounded tool-calling conversation and merges
// the model's output onto the ground-truth schema.
type Orchestrator struct {
	client      llm.ChatClient
	executor    llm.ToolExecutor
	cache       *CacheStore
	maxTurns    int
	turnTimeout time.Duration
	retryPolicy *retry.Config
	logger      *zap.Logger
}

// OrchestratorConfig holds dependencies for creating an Orchestrator.
type OrchestratorConfig struct {
	Client      llm.ChatClient
	Executor    llm.ToolExecutor
	Cache       *CacheStore
	MaxTurns    int // model invocations per enrichment attempt, default 6
	TurnTimeout time.Duration
	Retry       *retry.Config // backoff for transient model failures, default retry.DefaultConfig
	Logger      *zap.Logger
}

// NewOrchestrator creates an enrichment orchestrator.
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 6
	}
	retryPolicy := cfg.Retry
	if retryPolicy == nil {
		retryPolicy = retry.DefaultConfig()
	}
	return &Orchestrator{
		client:      cfg.Client,
		executor:    cfg.Executor,
		cache:       cfg.Cache,
		maxTurns:    maxTurns,
		turnTimeout: cfg.TurnTimeout,
		retryPolicy: retryPolicy,
		logger:      logger.Named("enrich"),
	}
}

// Enrich returns the enriched schema for the extracted ground truth.
// previousErrors carries validation feedback from a failed attempt; a
// non-empty list bypasses the cache and is surfaced to the model.
// Failures are classified as ErrModelInvocation or ErrParseOutput.
func (o *Orchestrator) Enrich(ctx context.Context, raw models.Schema, previousErrors []string) (models.Schema, error) {
	hash := ComputeSchemaHash(raw)

	if len(previousErrors) == 0 && o.cache != nil {
		if cached, ok := o.cache.Get(hash); ok {
			o.logger.Info("schema unchanged, using cached enrichment",
				zap.String("hash", hash))
			return cached, nil
		}
	}

	content, err := o.converse(ctx, raw, previousErrors)
	if err != nil {
		return nil, err
	}

	parsed, err := parseEnrichment(content)
	if err != nil {
		return nil, err
	}

	merged, skipped := MergeEnrichment(raw, parsed)
	for _, name := range skipped {
		o.logger.Warn("skipping model table with no ground-truth match",
			zap.String("table", name))
	}

	if o.cache != nil {
		if err := o.cache.Put(hash, merged); err != nil {
			o.logger.Warn("failed to persist enrichment cache", zap.Error(err))
		}
	}

	return merged, nil
}

// converse runs the bounded tool loop and returns the model's final
// free-form content.
func (o *Orchestrator) converse(ctx context.Context, raw models.Schema, previousErrors []string) (string, error) {
	systemPrompt, err := buildSystemPrompt(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseOutput, err)
	}

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: "Begin enrichment."},
	}
	if len(previousErrors) > 0 {
		feedback, _ := json.Marshal(previousErrors)
		messages = append(messages, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Previous errors to fix: %s", feedback),
		})
	}

	tools := llm.GetEnrichmentTools()
	state := stateAwaitModel
	turn := 0
	finalContent := ""
	var pending []llm.ToolCall

	for state != stateDone {
		switch state {
		case stateAwaitModel:
			if turn >= o.maxTurns {
				o.logger.Warn("turn budget exhausted",
					zap.Int("max_turns", o.maxTurns))
				state = stateDone
				continue
			}
			turn++

			resp, err := o.invokeModel(ctx, &llm.ChatRequest{
				SystemPrompt: systemPrompt,
				Messages:     messages,
				Tools:        tools,
			})
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrModelInvocation, err)
			}

			messages = append(messages, llm.Message{
				Role:      llm.RoleAssistant,
				Content:   resp.Content,
				ToolCalls: resp.ToolCalls,
			})

			if len(resp.ToolCalls) > 0 {
				pending = resp.ToolCalls
				state = stateInvokeTools
				continue
			}
			if strings.TrimSpace(resp.Content) != "" {
				o.logger.Info("received content from model", zap.Int("turn", turn))
				finalContent = resp.Content
			}
			state = stateDone

		case stateInvokeTools:
			for _, tc := range pending {
				o.logger.Info("calling tool",
					zap.Int("turn", turn),
					zap.String("tool", tc.Name),
					zap.String("arguments", tc.Arguments))

				result, err := o.executor.ExecuteTool(ctx, tc.Name, tc.Arguments)
				if err != nil {
					result = fmt.Sprintf("Error executing tool: %s", err.Error())
				}
				messages = append(messages, llm.Message{
					Role:       llm.RoleTool,
					Content:    result,
					ToolCallID: tc.ID,
				})
			}
			pending = nil
			state = stateAwaitModel
		}
	}

	return finalContent, nil
}

// invokeModel calls the chat client with a per-turn timeout, retrying
// classified transient failures with backoff.
func (o *Orchestrator) invokeModel(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return retry.DoWithResult(ctx, o.retryPolicy, func() (*llm.ChatResponse, error) {
		turnCtx := ctx
		if o.turnTimeout > 0 {
			var cancel context.CancelFunc
			turnCtx, cancel = context.WithTimeout(ctx, o.turnTimeout)
			defer cancel()
		}
		resp, err := o.client.Chat(turnCtx, req)
		if err != nil {
			return nil, llm.ClassifyError(err)
		}
		return resp, nil
	})
}

// buildSystemPrompt exposes only table, column, and declared type.
// Statistics and row counts are deliberately withheld from the model.
func buildSystemPrompt(raw models.Schema) (string, error) {
	simplified := make(map[string]map[string]string, len(raw))
	for tableName, table := range raw {
		cols := make(map[string]string, len(table.Columns))
		for colName, col := range table.Columns {
			cols[colName] = col.OriginalType
		}
		simplified[tableName] = cols
	}

	encoded, err := json.Marshal(simplified)
	if err != nil {
		return "", fmt.Errorf("encode simplified schema: %w", err)
	}
	return fmt.Sprintf(systemPromptTemplate, encoded), nil
}

// parseEnrichment extracts the structured payload from the model's
// final content. A top-level array of objects is folded into one
// mapping, later entries overwriting earlier ones.
func parseEnrichment(content string) (map[string]TableEnrichment, error) {
	jsonStr, err := llm.ExtractJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseOutput, err)
	}

	var parsed map[string]TableEnrichment
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err == nil {
		return parsed, nil
	}

	var list []map[string]TableEnrichment
	if err := json.Unmarshal([]byte(jsonStr), &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseOutput, err)
	}
	parsed = make(map[string]TableEnrichment)
	for _, item := range list {
		for k, v := range item {
			parsed[k] = v
		}
	}
	return parsed, nil
}
