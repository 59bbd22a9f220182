package mcpserver

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/humanizer/internal/humanize"
	"github.com/MrWong99/humanizer/internal/server"
)

func connect(t *testing.T, src Source) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ct, st := mcp.NewInMemoryTransports()
	ss, err := New(src, "test").Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func liteSource(t *testing.T) Source {
	t.Helper()
	p := humanize.DefaultParams()
	p.TransitionProbability = 0
	h, err := humanize.New(p)
	if err != nil {
		t.Fatalf("humanize.New: %v", err)
	}
	return func() server.Humanizer { return h }
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] = %T, want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestListTools(t *testing.T) {
	t.Parallel()

	cs := connect(t, liteSource(t))
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
		if tool.InputSchema == nil {
			t.Errorf("tool %q has no input schema", tool.Name)
		}
	}
	if !names["humanize"] || !names["count_text"] {
		t.Errorf("tools = %v", names)
	}
}

func TestHumanizeTool(t *testing.T) {
	t.Parallel()

	cs := connect(t, liteSource(t))
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "humanize",
		Arguments: map[string]any{"text": "I don't think it's fair."},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", text(t, res))
	}
	if got := text(t, res); got != "I do not think it is fair." {
		t.Errorf("text = %q", got)
	}
	structured, ok := res.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("structured content = %T", res.StructuredContent)
	}
	if structured["original_text"] != "I don't think it's fair." {
		t.Errorf("original_text = %v", structured["original_text"])
	}
	if structured["output_sentence_count"] != float64(1) {
		t.Errorf("output_sentence_count = %v", structured["output_sentence_count"])
	}
}

func TestHumanizeTool_EmptyTextIsToolError(t *testing.T) {
	t.Parallel()

	cs := connect(t, liteSource(t))
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "humanize",
		Arguments: map[string]any{"text": "   "},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected IsError for empty text")
	}
}

func TestCountTool(t *testing.T) {
	t.Parallel()

	cs := connect(t, liteSource(t))
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "count_text",
		Arguments: map[string]any{"text": "Wait... what?!"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if got := text(t, res); got != "7 words, 2 sentences" {
		t.Errorf("text = %q", got)
	}
}

func TestHandler_NotNil(t *testing.T) {
	t.Parallel()
	if Handler(New(liteSource(t), "test")) == nil {
		t.Fatal("Handler returned nil")
	}
}
