package catalog

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/adrg/frontmatter"

	"uicatalog/internal/source"
)

// docExtensions are tried in order next to a component.
var docExtensions = []string{".md", ".mdx"}

// DocFrontmatter is the YAML header recognised in component docs.
type DocFrontmatter struct {
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description"`
}

// Docs is the markdown documentation that sits next to a component.
type Docs struct {
	Path        string `json:"path"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body,omitempty"`
}

// docsFor looks for <stem>.md or <stem>.mdx beside componentPath. Missing,
// excluded or unparsable docs yield nil.
func (c *Catalog) docsFor(ctx context.Context, componentPath string) *Docs {
	base := strings.TrimSuffix(componentPath, path.Ext(componentPath))

	for _, ext := range docExtensions {
		docPath := base + ext
		bundle, err := c.src.Fetch(ctx, docPath, source.VersionLatest)
		if err != nil {
			if !errors.Is(err, source.ErrNotFound) {
				c.logger.Debug("Failed to read component docs", "path", docPath, "error", err)
			}
			continue
		}

		docs, err := parseDocs(docPath, bundle.Content)
		if err != nil {
			c.logger.Debug("No valid frontmatter found, skipping docs", "path", docPath, "error", err)
			continue
		}
		return docs
	}
	return nil
}

// parseDocs splits a markdown document into frontmatter and body. Documents
// without frontmatter keep their whole text as the body.
func parseDocs(docPath, content string) (*Docs, error) {
	var matter DocFrontmatter
	body, err := frontmatter.Parse(strings.NewReader(content), &matter)
	if err != nil {
		return nil, err
	}

	docs := &Docs{
		Path:        docPath,
		Title:       strings.TrimSpace(matter.Title),
		Description: strings.TrimSpace(matter.Description),
		Body:        strings.TrimSpace(string(body)),
	}
	if docs.Title == "" && docs.Description == "" && docs.Body == "" {
		return nil, errors.New("empty document")
	}
	return docs, nil
}
