package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailmind-ai/mailmind/pkg/agent"
	"github.com/mailmind-ai/mailmind/pkg/cache"
	"github.com/mailmind-ai/mailmind/pkg/config"
	"github.com/mailmind-ai/mailmind/pkg/gateway"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

type fakeGateway struct {
	confidence float64
}

func (g *fakeGateway) Infer(_ context.Context, req models.Request) (*models.InferenceResult, error) {
	return &models.InferenceResult{
		Text:        "Sounds good, see you then.",
		Confidence:  g.confidence,
		ModelID:     req.ModelID,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (g *fakeGateway) InferStream(context.Context, models.Request) (<-chan gateway.Chunk, error) {
	ch := make(chan gateway.Chunk)
	close(ch)
	return ch, nil
}

type nopRecorder struct{}

func (nopRecorder) Append(models.LogRecord) error { return nil }

type fakeAudit struct {
	records []models.LogRecord
}

func (f *fakeAudit) Tail(int) ([]models.LogRecord, error) { return f.records, nil }

func newTestServer(t *testing.T, confidence float64) *Server {
	t.Helper()
	store := cache.NewMemoryStore()
	pipeline := agent.New(&fakeGateway{confidence: confidence}, store, nopRecorder{}, time.Hour, zap.NewNop())
	return New(pipeline, nil, store, &fakeAudit{}, config.Default(), "test", zap.NewNop())
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	require.NoError(t, err)
	line = append(line, '\n')

	var out bytes.Buffer
	require.NoError(t, srv.Run(context.Background(), bytes.NewReader(line), &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), "raw: %s", out.String())
	return resp
}

func callTool(t *testing.T, srv *Server, name string, args any) ToolCallResult {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	require.NoError(t, err)
	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: argsJSON})
	require.NoError(t, err)

	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "tools/call",
		Params:  params,
	})
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result ToolCallResult
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func TestInitialize(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(t, 0.9), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "mailmind", result.ServerInfo.Name)
}

func TestToolsList(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(t, 0.9), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "tools/list",
	})
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	require.NoError(t, json.Unmarshal(data, &result))

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "mailmind_reply")
	assert.Contains(t, names, "mailmind_summarize")
	assert.Contains(t, names, "mailmind_cache_stats")
	assert.Contains(t, names, "mailmind_audit")
}

func TestReplyTool(t *testing.T) {
	result := callTool(t, newTestServer(t, 0.92), "mailmind_reply",
		map[string]any{"text": "Can we meet tomorrow at 10?"})
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "Sounds good, see you then.")
	assert.Contains(t, result.Content[0].Text, "accepted")
}

func TestReplyToolLowConfidence(t *testing.T) {
	result := callTool(t, newTestServer(t, 0.5), "mailmind_reply",
		map[string]any{"text": "Can we meet tomorrow at 10?"})
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "[Low confidence] ")
	assert.Contains(t, result.Content[0].Text, "rejected")
}

func TestReplyToolRequiresText(t *testing.T) {
	result := callTool(t, newTestServer(t, 0.9), "mailmind_reply", map[string]any{})
	assert.True(t, result.IsError)
}

func TestSummarizeToolWithoutSource(t *testing.T) {
	result := callTool(t, newTestServer(t, 0.9), "mailmind_summarize", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "no mail source")
}

func TestCacheStatsTool(t *testing.T) {
	result := callTool(t, newTestServer(t, 0.9), "mailmind_cache_stats", map[string]any{})
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "Entries:")
	assert.Contains(t, result.Content[0].Text, "degraded")
}

func TestAuditTool(t *testing.T) {
	srv := newTestServer(t, 0.9)
	srv.auditLog = &fakeAudit{records: []models.LogRecord{{
		Timestamp:    time.Now().UTC(),
		Task:         models.TaskReply,
		ModelID:      "llama3",
		InputPreview: "Thanks for the update.",
		Confidence:   0.92,
		CacheHit:     true,
		Accepted:     true,
	}}}

	result := callTool(t, srv, "mailmind_audit", map[string]any{"limit": 5})
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "llama3")
	assert.Contains(t, result.Content[0].Text, "Thanks for the update.")
}

func TestUnknownTool(t *testing.T) {
	result := callTool(t, newTestServer(t, 0.9), "mailmind_bogus", map[string]any{})
	assert.True(t, result.IsError)
}

func TestUnknownMethod(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(t, 0.9), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "bogus/method",
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
}

func TestParseError(t *testing.T) {
	srv := newTestServer(t, 0.9)
	var out bytes.Buffer
	require.NoError(t, srv.Run(context.Background(), bytes.NewReader([]byte("not json\n")), &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)
}
