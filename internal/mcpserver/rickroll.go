package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type rickRollInput struct {
	Autoplay bool `json:"autoplay"`
}

type rickRollOutput struct {
	Autoplay bool `json:"autoplay"`
}

// handleRickRoll runs after the SDK has validated the arguments against the
// input schema, so a non-boolean autoplay never reaches it.
func (s *Server) handleRickRoll(_ context.Context, _ *mcp.CallToolRequest, input rickRollInput) (*mcp.CallToolResult, rickRollOutput, error) {
	s.logger.Info("mcp tool call", "tool", s.widget.Identifier, "autoplay", input.Autoplay)

	html, err := s.widget.HTML(input.Autoplay)
	if err != nil {
		return nil, rickRollOutput{}, fmt.Errorf("rendering widget: %w", err)
	}

	embedded := &mcp.EmbeddedResource{
		Resource: &mcp.ResourceContents{
			URI:      s.widget.TemplateURI,
			MIMEType: widgetMIMEType,
			Text:     html,
		},
	}

	s.recorder.ToolCalled(s.widget.Identifier, input.Autoplay)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: s.widget.ResponseText},
			embedded,
		},
		Meta: s.widget.ResultMeta(embedded),
	}, rickRollOutput(input), nil
}
