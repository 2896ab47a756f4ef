// Package mcp exposes the generator as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/talkweave"
	"github.com/aretw0/talkweave/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// Generator is the part of talkweave.Generator exposed as tools.
type Generator interface {
	GenerateTalks(ctx context.Context, ids ...int) (*talkweave.Result, error)
	GenerateDialogues(ctx context.Context, ids ...int) (*talkweave.Result, error)
	GenerateText(ctx context.Context, query string) (*talkweave.Result, error)
	TraceRoots(ctx context.Context, id int) ([]int, error)
}

// GenerateResponse is the structured output of the generation tools.
type GenerateResponse struct {
	RunID    string `json:"run_id" jsonschema_description:"Identifier of the generation run"`
	Wikitext string `json:"wikitext" jsonschema_description:"Generated wiki markup"`
	Sections int    `json:"sections" jsonschema_description:"Number of top level sections"`
	Missing  []int  `json:"missing,omitempty" jsonschema_description:"Requested ids that do not exist"`
}

// RootsResponse is the structured output of trace_roots.
type RootsResponse struct {
	ID    int   `json:"id"`
	Roots []int `json:"roots" jsonschema_description:"First dialogue ids of the section"`
}

type generateArgs struct {
	IDs  []int `mapstructure:"ids"`
	Wrap bool  `mapstructure:"wrap"`
}

type searchArgs struct {
	Query string `mapstructure:"query"`
	Wrap  bool   `mapstructure:"wrap"`
}

type traceArgs struct {
	ID int `mapstructure:"id"`
}

// Server wraps a generator and exposes it as an MCP server.
type Server struct {
	gen       Generator
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP server instance.
func NewServer(gen Generator, opts ...Option) *Server {
	s := &Server{
		gen:       gen,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("talkweave-mcp", strings.TrimSpace(talkweave.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, mostly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("generate_talk",
		mcp.WithDescription("Generate wiki markup for talk units and their follow-up talks."),
		mcp.WithArray("ids", mcp.Required(), mcp.Description("Talk unit ids"), mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithBoolean("wrap", mcp.Description("Enclose the output in Dialogue Start/End templates")),
		mcp.WithOutputSchema[GenerateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGenerateTalk))

	s.mcpServer.AddTool(mcp.NewTool("generate_dialogue",
		mcp.WithDescription("Generate wiki markup for the sections containing the given dialogue ids."),
		mcp.WithArray("ids", mcp.Required(), mcp.Description("Dialogue ids"), mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithBoolean("wrap", mcp.Description("Enclose the output in Dialogue Start/End templates")),
		mcp.WithOutputSchema[GenerateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGenerateDialogue))

	s.mcpServer.AddTool(mcp.NewTool("search_dialogue",
		mcp.WithDescription("Search dialogue text and generate wiki markup for the matches."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for")),
		mcp.WithBoolean("wrap", mcp.Description("Enclose the output in Dialogue Start/End templates")),
		mcp.WithOutputSchema[GenerateResponse](),
	), mcp.NewStructuredToolHandler(s.handleSearch))

	s.mcpServer.AddTool(mcp.NewTool("trace_roots",
		mcp.WithDescription("Trace a dialogue id back to the first lines of its section."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Dialogue id")),
		mcp.WithOutputSchema[RootsResponse](),
	), mcp.NewStructuredToolHandler(s.handleTraceRoots))
}

// decodeArgs converts loosely typed tool arguments (JSON numbers arrive as
// float64) into out.
func decodeArgs(args map[string]interface{}, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) handleGenerateTalk(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	var in generateArgs
	if err := decodeArgs(args, &in); err != nil {
		return GenerateResponse{}, err
	}
	if len(in.IDs) == 0 {
		return GenerateResponse{}, fmt.Errorf("ids must not be empty")
	}
	res, err := s.gen.GenerateTalks(ctx, in.IDs...)
	return s.respond("generate_talk", res, in.Wrap, err)
}

func (s *Server) handleGenerateDialogue(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	var in generateArgs
	if err := decodeArgs(args, &in); err != nil {
		return GenerateResponse{}, err
	}
	if len(in.IDs) == 0 {
		return GenerateResponse{}, fmt.Errorf("ids must not be empty")
	}
	res, err := s.gen.GenerateDialogues(ctx, in.IDs...)
	return s.respond("generate_dialogue", res, in.Wrap, err)
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	var in searchArgs
	if err := decodeArgs(args, &in); err != nil {
		return GenerateResponse{}, err
	}
	res, err := s.gen.GenerateText(ctx, in.Query)
	return s.respond("search_dialogue", res, in.Wrap, err)
}

func (s *Server) handleTraceRoots(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RootsResponse, error) {
	var in traceArgs
	if err := decodeArgs(args, &in); err != nil {
		return RootsResponse{}, err
	}
	roots, err := s.gen.TraceRoots(ctx, in.ID)
	if err != nil {
		s.logger.Debug("MCP tool failed", "tool", "trace_roots", "err", err)
		return RootsResponse{}, fmt.Errorf("trace failed: %w", err)
	}
	return RootsResponse{ID: in.ID, Roots: roots}, nil
}

func (s *Server) respond(tool string, res *talkweave.Result, wrap bool, err error) (GenerateResponse, error) {
	if err != nil {
		s.logger.Debug("MCP tool failed", "tool", tool, "err", err)
		return GenerateResponse{}, fmt.Errorf("%s failed: %w", tool, err)
	}
	return GenerateResponse{
		RunID:    res.RunID,
		Wikitext: res.String(wrap),
		Sections: len(res.Sections),
		Missing:  res.Missing,
	}, nil
}
