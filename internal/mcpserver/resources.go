package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/radutopala/rickroller/internal/widget"
)

const (
	widgetMIMEType            = widget.MIMEType
	widgetResourceDescription = "Rick Roll widget markup"
)

func (s *Server) addWidgetResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		Name:        s.widget.Title,
		Title:       s.widget.Title,
		URI:         s.widget.TemplateURI,
		Description: widgetResourceDescription,
		MIMEType:    widgetMIMEType,
		Meta:        s.widget.ToolMeta(),
	}, s.handleReadWidget)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        s.widget.Title,
		Title:       s.widget.Title,
		URITemplate: s.widget.TemplateURI,
		Description: widgetResourceDescription,
		MIMEType:    widgetMIMEType,
		Meta:        s.widget.ToolMeta(),
	}, s.handleReadWidget)
}

func (s *Server) handleReadWidget(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	if uri != s.widget.TemplateURI {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	s.logger.Info("mcp resource read", "uri", uri)
	s.recorder.ResourceRead(uri)

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: widgetMIMEType,
				Text:     s.widget.Markup(),
				Meta:     s.widget.ToolMeta(),
			},
		},
	}, nil
}
