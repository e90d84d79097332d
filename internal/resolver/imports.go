package resolver

import (
	"path"
	"regexp"
	"strings"
)

// importPattern matches static import and re-export statements, including
// named import lists that span several lines and side-effect imports.
var importPattern = regexp.MustCompile(`(?:^|[;\s])(?:import|export)\s+(?:[\w*{}\s,$]*?\s*from\s*)?['"]([^'"\n]+)['"]`)

// ParseImports returns the local specifiers imported by content, in source
// order without duplicates. Only "@/", "./" and "../" specifiers are local;
// package imports are ignored.
func ParseImports(content string) []string {
	var specs []string
	seen := map[string]bool{}
	for _, m := range importPattern.FindAllStringSubmatch(content, -1) {
		spec := strings.TrimSpace(m[1])
		if !isLocalSpecifier(spec) || seen[spec] {
			continue
		}
		seen[spec] = true
		specs = append(specs, spec)
	}
	return specs
}

func isLocalSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "@/") || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// ResolveSpecifier maps an import specifier to a root-relative path. Alias
// specifiers resolve against appDir, relative ones against the importer's
// directory. ok is false for package specifiers and for paths that would
// leave the project root.
func ResolveSpecifier(importer, spec, appDir string) (resolved string, ok bool) {
	var joined string
	switch {
	case strings.HasPrefix(spec, "@/"):
		joined = path.Join(appDir, strings.TrimPrefix(spec, "@/"))
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"):
		joined = path.Join(path.Dir(importer), spec)
	default:
		return "", false
	}

	joined = strings.TrimPrefix(joined, "/")
	if joined == "" || joined == "." || joined == ".." || strings.HasPrefix(joined, "../") {
		return "", false
	}
	return joined, true
}

// DefaultExtension is appended to extensionless specifiers first.
const DefaultExtension = ".tsx"

// fallbackSuffixes are tried in order after the default extension.
var fallbackSuffixes = []string{".ts", ".jsx", ".js", "/index.tsx", "/index.ts"}

var sourceExtensions = map[string]bool{
	".tsx": true, ".ts": true, ".jsx": true, ".js": true, ".mjs": true, ".cjs": true,
	".css": true, ".scss": true, ".json": true, ".svg": true, ".md": true, ".mdx": true,
}

// Candidates lists the paths tried for a resolved specifier. A path that
// already carries a known source extension is tried as written; anything
// else gets the default extension and then the fallbacks.
func Candidates(resolved string) []string {
	if sourceExtensions[strings.ToLower(path.Ext(resolved))] {
		return []string{resolved}
	}

	out := make([]string, 0, 2+len(fallbackSuffixes))
	if path.Ext(resolved) != "" {
		out = append(out, resolved)
	}
	out = append(out, resolved+DefaultExtension)
	for _, suffix := range fallbackSuffixes {
		out = append(out, resolved+suffix)
	}
	return out
}
