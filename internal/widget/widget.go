// Package widget defines the rick-roll widget: its identifiers, the HTML it
// renders and the OpenAI Apps metadata attached to tools and results.
package widget

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// EmbedURL is the YouTube embed every widget rendering points at.
	EmbedURL = "https://www.youtube.com/embed/dQw4w9WgXcQ"

	// MIMEType is the content type ChatGPT Apps expect for widget templates.
	MIMEType = "text/html+skybridge"
)

//go:embed widget.html
var rawTemplate string

var markupTemplate = template.Must(template.New("widget").Parse(rawTemplate))

// Widget describes a tool-backed widget and the resource it renders from.
type Widget struct {
	Identifier   string
	Title        string
	Heading      string
	Description  string
	TemplateURI  string
	Invoking     string
	Invoked      string
	ResponseText string
}

// RickRoll is the only widget this server exposes.
var RickRoll = Widget{
	Identifier:   "rick-roll",
	Title:        "Rick Roll Player",
	Heading:      "Never Gonna Give You Up",
	Description:  "Plays the Rick Astley video in a widget",
	TemplateURI:  "ui://widget/rick-roll.html",
	Invoking:     "Loading the Rick Roll...",
	Invoked:      "Enjoy the Rick Roll!",
	ResponseText: "Rick Roll widget ready",
}

// Src returns the iframe source, with the autoplay query parameter when requested.
func Src(autoplay bool) string {
	if autoplay {
		return EmbedURL + "?autoplay=1"
	}
	return EmbedURL
}

// HTML renders the widget markup for the given autoplay setting.
func (w Widget) HTML(autoplay bool) (string, error) {
	var sb strings.Builder
	data := struct {
		Heading string
		Src     string
	}{
		Heading: w.Heading,
		Src:     Src(autoplay),
	}
	if err := markupTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering widget %s: %w", w.Identifier, err)
	}
	return sb.String(), nil
}

// Markup returns the static resource content served for the widget URI.
// It panics if the embedded template cannot render, which only happens
// when widget.html itself is broken.
func (w Widget) Markup() string {
	html, err := w.HTML(false)
	if err != nil {
		panic(err)
	}
	return html
}

// ToolMeta returns the _meta object advertised on the tool and its resources.
func (w Widget) ToolMeta() mcp.Meta {
	return mcp.Meta{
		"openai/outputTemplate":          w.TemplateURI,
		"openai/toolInvocation/invoking": w.Invoking,
		"openai/toolInvocation/invoked":  w.Invoked,
		"openai/widgetAccessible":        true,
		"openai/resultCanProduceWidget":  true,
	}
}

// ResultMeta returns the _meta object attached to a tool result, embedding
// the rendered resource under the openai.com/widget key.
func (w Widget) ResultMeta(embedded *mcp.EmbeddedResource) mcp.Meta {
	meta := w.ToolMeta()
	meta["openai.com/widget"] = embedded
	return meta
}
