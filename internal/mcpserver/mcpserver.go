// Package mcpserver exposes the registry over the Model Context Protocol SDK,
// for the stdio transport and the streamable HTTP endpoint.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"toolbox-mcp/internal/dispatch"
	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/registry"
)

// Options names the server in the protocol handshake.
type Options struct {
	Name    string
	Version string
}

// New returns an SDK server mirroring every entry of the dispatcher's registry.
// The registry must be sealed.
func New(d *dispatch.Dispatcher, opts Options) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, nil)
	reg := d.Registry()
	for t := range reg.Tools() {
		srv.AddTool(&mcp.Tool{
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			InputSchema: t.Input.JSONSchema(),
		}, toolHandler(d, t.Name))
	}
	for p := range reg.Prompts() {
		srv.AddPrompt(toPrompt(p), promptHandler(d, p.Name))
	}
	for r := range reg.Resources() {
		srv.AddResource(&mcp.Resource{
			URI:         r.URI,
			Name:        r.Name,
			Title:       r.Title,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		}, resourceHandler(d))
	}
	return srv
}

// Run serves srv over stdin/stdout until ctx is done or the peer disconnects.
func Run(ctx context.Context, srv *mcp.Server) error {
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// StreamHandler returns the streamable HTTP endpoint for srv.
func StreamHandler(srv *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)
}

func toolHandler(d *dispatch.Dispatcher, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &raw); err != nil {
				return nil, fmt.Errorf("arguments of %s must be a JSON object: %w", name, err)
			}
		}
		res, err := d.Invoke(ctx, name, raw)
		if err != nil {
			return nil, err
		}
		return ToCallResult(res)
	}
}

// ToCallResult converts an envelope into the SDK result type.
func ToCallResult(res envelope.Result) (*mcp.CallToolResult, error) {
	out := &mcp.CallToolResult{StructuredContent: res.StructuredContent}
	for _, it := range res.Content {
		switch it.Type {
		case envelope.KindText:
			out.Content = append(out.Content, &mcp.TextContent{Text: it.Text})
		case envelope.KindImage:
			data, err := base64.StdEncoding.DecodeString(it.Data)
			if err != nil {
				return nil, fmt.Errorf("decode image content: %w", err)
			}
			out.Content = append(out.Content, &mcp.ImageContent{Data: data, MIMEType: it.MIMEType})
		default:
			return nil, fmt.Errorf("unsupported content type %q", it.Type)
		}
	}
	return out, nil
}

func toPrompt(p *registry.PromptDescriptor) *mcp.Prompt {
	out := &mcp.Prompt{Name: p.Name, Title: p.Title, Description: p.Description}
	for _, f := range p.Args {
		out.Arguments = append(out.Arguments, &mcp.PromptArgument{
			Name:        f.Name,
			Description: f.Description,
			Required:    !f.Optional,
		})
	}
	return out
}

func promptHandler(d *dispatch.Dispatcher, name string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		res, err := d.GetPrompt(ctx, name, req.Params.Arguments)
		if err != nil {
			return nil, err
		}
		out := &mcp.GetPromptResult{Description: res.Description}
		for _, m := range res.Messages {
			out.Messages = append(out.Messages, &mcp.PromptMessage{
				Role:    mcp.Role(m.Role),
				Content: &mcp.TextContent{Text: m.Content.Text},
			})
		}
		return out, nil
	}
}

func resourceHandler(d *dispatch.Dispatcher) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		desc, text, err := d.ReadResource(ctx, req.Params.URI)
		if errors.Is(err, dispatch.ErrResourceNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{{
			URI:      desc.URI,
			MIMEType: desc.MIMEType,
			Text:     text,
		}}}, nil
	}
}
