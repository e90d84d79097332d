package mcp

import (
	"context"
	"errors"

	"uicatalog/internal/catalog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// resourceNotFound is the body served for URIs that resolve to nothing.
const resourceNotFound = "Resource not found"

func (s *Server) registerResources(ctx context.Context) error {
	for _, c := range s.registry.Catalogs() {
		s.registerTemplates(c)
	}
	return s.refreshResources(ctx)
}

// refreshResources replaces the concrete resource list with a fresh scan of
// the local catalog. It runs before every resources/list so added and deleted
// components show up without a restart.
func (s *Server) refreshResources(ctx context.Context) error {
	local := s.registry.Local()
	if local == nil {
		return nil
	}

	resources, err := local.ListResources(ctx)
	if err != nil {
		return err
	}

	handler := s.readHandler(local)
	entries := make([]server.ServerResource, 0, len(resources))
	for _, r := range resources {
		entries = append(entries, server.ServerResource{
			Resource: mcp.NewResource(r.URI, r.Name,
				mcp.WithResourceDescription(r.Description),
				mcp.WithMIMEType(r.MIMEType),
			),
			Handler: handler,
		})
	}
	s.mcpServer.SetResources(entries...)

	s.logger.Debug("Registered resources", "count", len(entries))
	return nil
}

func (s *Server) registerTemplates(c *catalog.Catalog) {
	handler := server.ResourceTemplateHandlerFunc(s.readHandler(c))

	templates := []struct {
		uri, name, description, mimeType string
	}{
		{c.URI(catalog.ResourceComponents, "{category}", "{name}"), "component", "Component source by category and name", "text/typescript"},
		{c.URI(catalog.ResourceConfig, "{file}"), "config", "Project configuration file", "text/typescript"},
		{c.URI(catalog.ResourceLib, "{name}"), "lib", "Library module", "text/typescript"},
		{c.URI(catalog.ResourceScaffolds, "{name}"), "scaffold", "Scaffold descriptor", "application/json"},
	}
	for _, t := range templates {
		s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(t.uri, c.Name()+" "+t.name,
			mcp.WithTemplateDescription(t.description),
			mcp.WithTemplateMIMEType(t.mimeType),
		), handler)
	}
}

// readHandler serves reads through c. Unresolvable URIs return a plain
// "Resource not found" body instead of a protocol error.
func (s *Server) readHandler(c *catalog.Catalog) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := req.Params.URI
		s.logger.Debug("Reading resource", "uri", uri, "project", c.Name())

		content, err := c.ReadResource(ctx, uri)
		if errors.Is(err, catalog.ErrResourceNotFound) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: uri, MIMEType: "text/plain", Text: resourceNotFound},
			}, nil
		}
		if err != nil {
			s.logger.Warn("Failed to read resource", "uri", uri, "error", err)
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: content.URI, MIMEType: content.MIMEType, Text: content.Text},
		}, nil
	}
}
