package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mailmind-ai/mailmind/pkg/digest"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Tool argument structs.

type replyArgs struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type summarizeArgs struct {
	Max int64 `json:"max,omitempty"`
}

type auditArgs struct {
	Limit int `json:"limit,omitempty"`
}

// toolHandler is a function that handles a tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"mailmind_reply":       handleReply,
	"mailmind_summarize":   handleSummarize,
	"mailmind_cache_stats": handleCacheStats,
	"mailmind_audit":       handleAudit,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "mailmind_reply",
		Description: "Draft a reply to an email through the confidence-gated local model pipeline.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"text"},
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "The email text to reply to",
				},
				"model": map[string]any{
					"type":        "string",
					"description": "Override the configured reply model (optional)",
				},
			},
		},
	},
	{
		Name:        "mailmind_summarize",
		Description: "Summarize unread email through the confidence-gated local model pipeline.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"max": map[string]any{
					"type":        "integer",
					"description": "Maximum number of unread messages to summarize (optional)",
				},
			},
		},
	},
	{
		Name:        "mailmind_cache_stats",
		Description: "Show result cache statistics (entries, hits, misses, durability).",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "mailmind_audit",
		Description: "Show the most recent interaction-log records.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Number of records to return (optional, default 20)",
				},
			},
		},
	},
}

func errorResult(format string, args ...any) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{Content: []ContentBlock{{Type: "text", Text: text}}}
}

func handleReply(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult {
	var a replyArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult("invalid arguments: %v", err)
		}
	}
	if a.Text == "" {
		return errorResult("text is required")
	}

	task := s.cfg.Task(models.TaskReply)
	modelID := task.Model
	if a.Model != "" {
		modelID = a.Model
	}

	resp, err := s.pipeline.Handle(ctx, models.Request{
		Task:      models.TaskReply,
		InputText: digest.ReplyPrompt(a.Text),
		ModelID:   modelID,
	}, task.Threshold)
	if err != nil {
		return errorResult("reply failed: %v", err)
	}
	return textResult(formatReply(resp))
}

func handleSummarize(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult {
	if s.summarizer == nil {
		return errorResult("no mail source configured")
	}

	var a summarizeArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult("invalid arguments: %v", err)
		}
	}

	summaries, err := s.summarizer.Run(ctx)
	if err != nil {
		return errorResult("summarize failed: %v", err)
	}
	if a.Max > 0 && int64(len(summaries)) > a.Max {
		summaries = summaries[:a.Max]
	}
	return textResult(formatSummaries(summaries))
}

func handleCacheStats(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	stats, err := s.cache.Stats()
	if err != nil {
		return errorResult("cache stats failed: %v", err)
	}
	return textResult(formatCacheStats(stats, s.cache.Durable()))
}

func handleAudit(_ context.Context, s *Server, args json.RawMessage) ToolCallResult {
	var a auditArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return errorResult("invalid arguments: %v", err)
		}
	}
	if a.Limit <= 0 {
		a.Limit = 20
	}

	records, err := s.auditLog.Tail(a.Limit)
	if err != nil {
		return errorResult("audit read failed: %v", err)
	}
	return textResult(formatRecords(records))
}
