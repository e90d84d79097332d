package mcp

import (
	"context"
	"fmt"
	"time"

	"uicatalog/internal/catalog"
	"uicatalog/internal/specs"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	ToolListComponents = "list_components"
	ToolGetComponent   = "get_component"
	ToolGetSpecs       = "get_component_specs"
	ToolSearch         = "search_components"
	ToolChangelog      = "get_changelog"
)

func projectArg() mcp.ToolOption {
	return mcp.WithString("project",
		mcp.Description("Optional: configured remote project name (default: the local project)"),
	)
}

func categoryArg(desc string) mcp.ToolOption {
	return mcp.WithString("category", mcp.Description(desc))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolListComponents,
		mcp.WithDescription("List all available components, optionally filtered by category or version"),
		mcp.WithString("category",
			mcp.Description("Filter by category: sections, navigation, animations, ui, cosmic, magicui, experiments (remote projects use directory names)"),
		),
		mcp.WithString("version", mcp.Description("Optional: specific Git tag or commit hash")),
		projectArg(),
	), s.handleListComponents)

	s.mcpServer.AddTool(mcp.NewTool(ToolGetComponent,
		mcp.WithDescription("Get a specific component with full blueprint (includes dependencies, specs, and code)"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Component name (e.g., 'hero-section', 'how-we-help-section')"),
		),
		mcp.WithString("version", mcp.Description("Optional: Git tag, commit hash, or 'latest' (default: latest)")),
		mcp.WithBoolean("include_dependencies", mcp.Description("Include all dependent files (default: true)")),
		categoryArg("Optional: pick the component from this category when several share the name"),
		projectArg(),
	), s.handleGetComponent)

	s.mcpServer.AddTool(mcp.NewTool(ToolGetSpecs,
		mcp.WithDescription("Get detailed specifications for a component (colors, animations, borders, spacing, fonts)"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Component name")),
		mcp.WithString("property",
			mcp.Description("Optional: specific property (colors, animations, borders, spacing, fonts)"),
			mcp.Enum(append(append([]string{}, specs.Facets...), "all")...),
		),
		categoryArg("Optional: pick the component from this category when several share the name"),
		projectArg(),
	), s.handleGetSpecs)

	s.mcpServer.AddTool(mcp.NewTool(ToolSearch,
		mcp.WithDescription("Search components by query (name, content, or properties)"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithObject("filters",
			mcp.Description("Optional filters: category (string), has_animation (boolean). Unknown keys are ignored"),
		),
		projectArg(),
	), s.handleSearch)

	s.mcpServer.AddTool(mcp.NewTool(ToolChangelog,
		mcp.WithDescription("Get version history and changelog for a component or entire project"),
		mcp.WithString("component", mcp.Description("Optional: specific component name (omit for project-wide changelog)")),
		mcp.WithString("version_range", mcp.Description("Optional: version range (e.g., 'v1.0.0..v1.2.0')")),
		categoryArg("Optional: pick the component from this category when several share the name"),
		projectArg(),
	), s.handleChangelog)
}

// catalogFor resolves the project argument.
func (s *Server) catalogFor(req mcp.CallToolRequest) (*catalog.Catalog, error) {
	return s.registry.Get(req.GetString("project", ""))
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer s.logger.LogPerformance(ToolListComponents, time.Now())
	s.logger.LogRequest(ToolListComponents, req.GetArguments())

	c, err := s.catalogFor(req)
	if err != nil {
		return respond(nil, err)
	}
	return respond(c.List(ctx, req.GetString("category", "all"), req.GetString("version", "")))
}

func (s *Server) handleGetComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer s.logger.LogPerformance(ToolGetComponent, time.Now())
	s.logger.LogRequest(ToolGetComponent, req.GetArguments())

	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := s.catalogFor(req)
	if err != nil {
		return respond(nil, err)
	}
	return respond(c.GetComponent(ctx, catalog.GetRequest{
		Name:                name,
		Version:             req.GetString("version", ""),
		Category:            req.GetString("category", ""),
		IncludeDependencies: req.GetBool("include_dependencies", true),
	}))
}

func (s *Server) handleGetSpecs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer s.logger.LogPerformance(ToolGetSpecs, time.Now())
	s.logger.LogRequest(ToolGetSpecs, req.GetArguments())

	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := s.catalogFor(req)
	if err != nil {
		return respond(nil, err)
	}
	return respond(c.GetSpecs(ctx, name, req.GetString("property", "all"), req.GetString("category", "")))
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer s.logger.LogPerformance(ToolSearch, time.Now())
	s.logger.LogRequest(ToolSearch, req.GetArguments())

	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var filters map[string]any
	if raw, ok := req.GetArguments()["filters"]; ok && raw != nil {
		filters, ok = raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("filters must be an object, got %T", raw)), nil
		}
	}

	c, err := s.catalogFor(req)
	if err != nil {
		return respond(nil, err)
	}
	return respond(c.Search(ctx, query, filters))
}

func (s *Server) handleChangelog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer s.logger.LogPerformance(ToolChangelog, time.Now())
	s.logger.LogRequest(ToolChangelog, req.GetArguments())

	c, err := s.catalogFor(req)
	if err != nil {
		return respond(nil, err)
	}
	return respond(c.Changelog(ctx,
		req.GetString("component", ""),
		req.GetString("version_range", ""),
		req.GetString("category", ""),
	))
}
