// Package mcp serves the component catalog over the Model Context Protocol
// using mcp-go.
//
// # Tools
//
// Five tools mirror the catalog operations: list_components, get_component,
// get_component_specs, search_components and get_changelog. Each accepts an
// optional "project" argument naming a remote project from the config; when
// omitted the local project is used.
//
// Every tool answers with a JSON document (two-space indent). Failures a
// caller can provoke, such as an unknown component, come back as
// {"error": "..."} documents rather than protocol errors. Only malformed
// arguments produce an MCP tool error.
//
// # Resources
//
// Each catalog exposes scheme://components/{category}/{name},
// scheme://config/{file}, scheme://lib/{name} and scheme://scaffolds/{name}
// as resource templates, so reads always reflect the current tree. The local
// catalog's resources are also listed individually, as a snapshot taken at
// startup.
//
// # Usage
//
// The server is normally launched as a subprocess by an MCP client:
//
//	uicatalog serve
//
// It reads JSON-RPC requests from stdin and writes responses to stdout until
// EOF or cancellation. Logs go to stderr.
package mcp
