// Package mcpserver exposes the humanizer as Model Context Protocol tools so
// agents can call it directly.
//
// Tools:
//
//   - humanize: rewrite text; same input and output as POST /humanize.
//   - count_text: count words and sentences with the active counter.
//
// The server is stateless; [Handler] serves it over streamable HTTP.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/humanizer/internal/server"
)

// Source returns the Humanizer a tool call should use. Passing
// (*server.Server).Humanizer keeps tools in step with configuration reloads.
type Source func() server.Humanizer

// CountInput is the input of the count_text tool.
type CountInput struct {
	Text string `json:"text" jsonschema:"the text to count"`
}

// CountOutput is the result of the count_text tool.
type CountOutput struct {
	Words     int    `json:"words"`
	Sentences int    `json:"sentences"`
	Variant   string `json:"variant"`
}

// New builds an MCP server with the humanizer tools registered.
func New(src Source, version string) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: "humanizer", Version: version}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "humanize",
		Description: "Rewrite text so it reads less mechanically: expands contractions, adds occasional transitions and, when use_synonyms is set, swaps words for close synonyms.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in server.HumanizeRequest) (*mcp.CallToolResult, server.HumanizeResponse, error) {
		resp, err := server.Process(ctx, src(), in, false)
		if err != nil {
			return nil, server.HumanizeResponse{}, fmt.Errorf("humanize: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: resp.HumanizedText}},
		}, resp, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "count_text",
		Description: "Count words and sentences the same way the humanize tool does.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
		h := src()
		c := h.Counter()
		out := CountOutput{
			Words:     c.Words(in.Text),
			Sentences: c.Sentences(in.Text),
			Variant:   string(h.Variant()),
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%d words, %d sentences", out.Words, out.Sentences)}},
		}, out, nil
	})

	return s
}

// Handler serves s over the streamable HTTP transport.
func Handler(s *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s }, nil)
}
