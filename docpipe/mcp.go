package docpipe

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/word2quiz/kit"
)

// RegisterMCP registers the extraction tools on an MCP server:
// docpipe_extract, docpipe_detect and docpipe_formats.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	for _, t := range []struct {
		tool     *mcp.Tool
		endpoint kit.Endpoint
	}{
		{
			tool: &mcp.Tool{
				Name:        "docpipe_extract",
				Description: "Split a quiz document (docx, html, txt) into paragraphs of inline HTML, as the quiz classifier reads them.",
				InputSchema: objectSchema(map[string]any{
					"path":   map[string]any{"type": "string", "description": "Document to extract"},
					"styles": map[string]any{"type": "boolean", "description": "Also return each paragraph's style and heading level"},
				}, "path"),
			},
			endpoint: kit.WithLogging(p.logger, "docpipe_extract")(p.extractEndpoint),
		},
		{
			tool: &mcp.Tool{
				Name:        "docpipe_detect",
				Description: "Report which extractor a file name selects, or that it has none.",
				InputSchema: objectSchema(map[string]any{
					"path": map[string]any{"type": "string", "description": "File name or path"},
				}, "path"),
			},
			endpoint: p.detectEndpoint,
		},
		{
			tool: &mcp.Tool{
				Name:        "docpipe_formats",
				Description: "List the document formats a quiz can be extracted from.",
				InputSchema: objectSchema(map[string]any{}),
			},
			endpoint: func(context.Context, any) (any, error) {
				return map[string]any{"formats": SupportedFormats()}, nil
			},
		},
	} {
		kit.RegisterMCPTool(srv, t.tool, t.endpoint, decodePathReq)
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// pathReq is shared by every docpipe tool; tools ignore fields they do not use.
type pathReq struct {
	Path   string `json:"path"`
	Styles bool   `json:"styles"`
}

func decodePathReq(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r pathReq
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
	}
	return &kit.MCPDecodeResult{Request: &r}, nil
}

// extractResp is the paragraph stream of a document. Texts is what the
// quiz parser consumes; Paragraphs is only filled when styles are asked for.
type extractResp struct {
	Path       string      `json:"path"`
	Format     Format      `json:"format"`
	Title      string      `json:"title,omitempty"`
	Count      int         `json:"paragraph_count"`
	Texts      []string    `json:"texts"`
	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
}

func (p *Pipeline) extractEndpoint(ctx context.Context, req any) (any, error) {
	r := req.(*pathReq)
	doc, err := p.Extract(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	resp := &extractResp{
		Path:   doc.Path,
		Format: doc.Format,
		Title:  doc.Title,
		Count:  len(doc.Paragraphs),
		Texts:  make([]string, 0, len(doc.Paragraphs)),
	}
	for text := range doc.Texts() {
		resp.Texts = append(resp.Texts, text)
	}
	if r.Styles {
		resp.Paragraphs = doc.Paragraphs
	}
	return resp, nil
}

type detectResp struct {
	Path      string `json:"path"`
	Format    Format `json:"format,omitempty"`
	Supported bool   `json:"supported"`
}

// detectEndpoint answers unsupported extensions with supported=false
// rather than a tool error, so clients can check any name.
func (p *Pipeline) detectEndpoint(_ context.Context, req any) (any, error) {
	r := req.(*pathReq)
	format, err := p.Detect(r.Path)
	if err != nil {
		return &detectResp{Path: r.Path}, nil
	}
	return &detectResp{Path: r.Path, Format: format, Supported: true}, nil
}
