package word2quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/word2quiz/kit"
	"github.com/hazyhaar/word2quiz/quiz"
)

// RegisterMCP registers the word2quiz tools, and the docpipe tools they
// build on, on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerParseTool(srv)
	s.registerClassifyTool(srv)
	s.registerNormalizeTool(srv)
	s.registerSaveTool(srv)
	s.registerRunsTool(srv)
	s.registerRunTool(srv)
	s.pipe.RegisterMCP(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func decodeInto[T any](req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r T
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
	}
	return &kit.MCPDecodeResult{Request: &r}, nil
}

var parseProps = map[string]any{
	"path":               map[string]any{"type": "string", "description": "Quiz document (docx, html, txt)"},
	"expected_questions": map[string]any{"type": "integer", "description": "Questions every quiz must have (0 = configured default)"},
	"normalize_fontsize": map[string]any{"type": "integer", "description": "Rewrite question/answer font size to this many points (0 = configured default)"},
}

type parseReq struct {
	Path              string `json:"path"`
	ExpectedQuestions int    `json:"expected_questions"`
	NormalizeFontSize int    `json:"normalize_fontsize"`
}

func (r *parseReq) options() quiz.Options {
	return quiz.Options{ExpectedQuestions: r.ExpectedQuestions, NormalizeFontSize: r.NormalizeFontSize}
}

// --- parse ---

func (s *Service) registerParseTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "word2quiz_parse",
		Description: "Parse a quiz document into validated sections of four-answer questions.",
		InputSchema: inputSchema(parseProps, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*parseReq)
		return s.ParseFile(ctx, r.Path, r.options())
	}

	kit.RegisterMCPTool(srv, tool, kit.WithLogging(s.logger, tool.Name)(endpoint), decodeInto[parseReq])
}

// --- classify ---

type classifyReq struct {
	Path              string   `json:"path"`
	Paragraphs        []string `json:"paragraphs"`
	NormalizeFontSize int      `json:"normalize_fontsize"`
}

func (s *Service) registerClassifyTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "word2quiz_classify",
		Description: "Classify every paragraph of a document, or of the given paragraphs, without assembling quizzes.",
		InputSchema: inputSchema(map[string]any{
			"path":               map[string]any{"type": "string", "description": "Quiz document (docx, html, txt)"},
			"paragraphs":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Paragraphs of inline HTML, used when path is empty"},
			"normalize_fontsize": map[string]any{"type": "integer", "description": "Font size for question/answer text (0 = configured default)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*classifyReq)
		var lines []quiz.Line
		switch {
		case r.Path != "":
			var err error
			lines, err = s.ClassifyFile(ctx, r.Path, r.NormalizeFontSize)
			if err != nil {
				return nil, err
			}
		case len(r.Paragraphs) > 0:
			lines = s.classify(slices.Values(r.Paragraphs), r.NormalizeFontSize)
		default:
			return nil, errors.New("path or paragraphs is required")
		}
		return map[string]any{"lines": lines}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[classifyReq])
}

// --- normalize ---

type normalizeReq struct {
	HTML string `json:"html"`
	Size int    `json:"size"`
}

func (s *Service) registerNormalizeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "word2quiz_normalize",
		Description: "Rewrite the font size of an HTML fragment, wrapping it in a sized span when it has none.",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "Inline HTML fragment"},
			"size": map[string]any{"type": "integer", "description": "Font size in points"},
		}, []string{"html", "size"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*normalizeReq)
		if r.Size <= 0 {
			return nil, fmt.Errorf("size must be positive, got %d", r.Size)
		}
		return map[string]any{"html": quiz.NormalizeSize(r.HTML, r.Size)}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[normalizeReq])
}

// --- save ---

func (s *Service) registerSaveTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "word2quiz_save",
		Description: "Parse a quiz document and store the result as a run.",
		InputSchema: inputSchema(parseProps, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*parseReq)
		return s.SaveFile(ctx, r.Path, r.options())
	}

	kit.RegisterMCPTool(srv, tool, kit.WithLogging(s.logger, tool.Name)(endpoint), decodeInto[parseReq])
}

// --- runs ---

type runsReq struct {
	Limit int `json:"limit"`
}

func (s *Service) registerRunsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "word2quiz_runs",
		Description: "List stored runs, newest first.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max runs (default 50)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*runsReq)
		runs, err := s.Runs(ctx, r.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"runs": runs}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[runsReq])
}

// --- run ---

type runReq struct {
	ID string `json:"id"`
}

func (s *Service) registerRunTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "word2quiz_run",
		Description: "Load a stored run with its sections, questions and answers.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Run ID"},
		}, []string{"id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*runReq)
		run, err := s.Run(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, fmt.Errorf("run %s not found", r.ID)
		}
		return run, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[runReq])
}
