// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the cookbook hub to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cookhub/internal/apperr"
	"github.com/starford/cookhub/internal/hubservice"
)

// Fixed tool error messages. Upstream detail is never returned to clients.
const (
	msgNotFound    = "cookbook not found"
	msgUnavailable = "hub unavailable"
)

// DefaultBranch is used when a tool call omits the branch argument.
const DefaultBranch = "main"

// Server wraps the MCP server with the hub tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *hubservice.Service
	branch string
	format string
}

// New creates a new MCP server with all hub tools registered.
// An empty branch falls back to DefaultBranch.
func New(svc *hubservice.Service, branch string) *Server {
	if branch == "" {
		branch = DefaultBranch
	}
	s := &Server{svc: svc, branch: branch, format: ManifestFormat(svc.Options())}

	s.mcp = server.NewMCPServer(
		"Cookhub",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	branchArg := mcp.WithString("branch", mcp.Description("Branch to read from (default "+branch+")"))

	s.mcp.AddTool(mcp.NewTool("list_cookbooks",
		mcp.WithDescription("List the cookbooks of the hub catalog as JSON (id, name, path, slug)."),
		branchArg,
	), s.listCookbooks)

	s.mcp.AddTool(mcp.NewTool("read_cookbook",
		mcp.WithDescription("Read the raw Markdown of a cookbook."),
		branchArg,
		mcp.WithString("slug", mcp.Required(), mcp.Description("Cookbook slug as returned by list_cookbooks")),
	), s.readCookbook)

	s.mcp.AddTool(mcp.NewTool("get_cookbook_code",
		mcp.WithDescription("Return the python code blocks of a cookbook, joined by a blank line."),
		branchArg,
		mcp.WithString("slug", mcp.Required(), mcp.Description("Cookbook slug as returned by list_cookbooks")),
	), s.getCookbookCode)

	s.mcp.AddTool(mcp.NewTool("get_manifest_format",
		mcp.WithDescription("Explain how the catalog is derived from the navigation manifest."),
	), s.getManifestFormat)

	s.mcp.AddResource(
		mcp.NewResource(ManifestFormatURI, "Manifest Format",
			mcp.WithResourceDescription("How cookbooks are listed and how code blocks are extracted."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readManifestFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listCookbooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.Catalog(ctx, req.GetString("branch", s.branch))
	if err != nil {
		return toolError("list_cookbooks", err), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readCookbook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := s.svc.Markdown(ctx, req.GetString("branch", s.branch), slug)
	if err != nil {
		return toolError("read_cookbook", err), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) getCookbookCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := s.svc.Code(ctx, req.GetString("branch", s.branch), slug)
	if err != nil {
		return toolError("get_cookbook_code", err), nil
	}
	return mcp.NewToolResultText(code), nil
}

func (s *Server) getManifestFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.format), nil
}

func (s *Server) readManifestFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ManifestFormatURI,
			MIMEType: "text/markdown",
			Text:     s.format,
		},
	}, nil
}

// toolError maps a service error to a fixed message; the detail is logged.
func toolError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrContentNotFound) {
		slog.Info(tool+" not found", slog.String("error", err.Error()))
		return mcp.NewToolResultError(msgNotFound)
	}
	slog.Error(tool+" failed", slog.String("error", err.Error()))
	return mcp.NewToolResultError(msgUnavailable)
}
