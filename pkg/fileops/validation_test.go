package fileops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestValidatePathSecurity(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative path", "homepage/components/button.tsx", false},
		{"absolute temp path", filepath.Join(os.TempDir(), "project"), false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"parent traversal", "../../etc/passwd", true},
		{"embedded traversal", "homepage/../../secret", true},
	}

	if runtime.GOOS != "windows" {
		tests = append(tests, struct {
			name    string
			path    string
			wantErr bool
		}{"reserved absolute", "/etc", true})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathSecurity(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathSecurity(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestCleanRelativePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"homepage/components/ui/button.tsx", "homepage/components/ui/button.tsx", false},
		{"./homepage//components/ui/button.tsx", "homepage/components/ui/button.tsx", false},
		{"/homepage/lib/utils.ts", "homepage/lib/utils.ts", false},
		{`homepage\components\navbar.tsx`, "homepage/components/navbar.tsx", false},
		{"  homepage/app/page.tsx ", "homepage/app/page.tsx", false},
		{"", "", true},
		{".", "", true},
		{"/", "", true},
		{"../outside.tsx", "", true},
		{"homepage/../../outside.tsx", "", true},
		{`homepage\..\..\x`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanRelativePath(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CleanRelativePath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CleanRelativePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/projects/site"); got != filepath.Join(home, "projects/site") {
		t.Errorf("ExpandPath() = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath() changed absolute path: %q", got)
	}
	if got := ExpandPath("~user/x"); got != "~user/x" {
		t.Errorf("ExpandPath() changed ~user path: %q", got)
	}
}

func TestIsReservedDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}

	reserved := []string{"/", "/etc", "/usr/bin", "/proc/self"}
	for _, p := range reserved {
		if !IsReservedDirectory(p) {
			t.Errorf("IsReservedDirectory(%q) = false, want true", p)
		}
	}

	if IsReservedDirectory(t.TempDir()) {
		t.Error("temp directories must not be reserved")
	}

	if home, err := os.UserHomeDir(); err == nil {
		if !IsReservedDirectory(filepath.Join(home, ".ssh")) {
			t.Error("~/.ssh must be reserved")
		}
	}
}

func TestIsReservedDirectory_FollowsSymlinks(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux paths")
	}

	link := filepath.Join(t.TempDir(), "etc-link")
	if err := os.Symlink("/etc", link); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}
	if !IsReservedDirectory(link) {
		t.Error("a link into /etc must be reserved")
	}
	if err := ValidatePathSecurity(link); err == nil {
		t.Error("ValidatePathSecurity() should reject a link into /etc")
	}
}

func TestResolveWithin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	base := t.TempDir()
	root := filepath.Join(base, "site")
	for _, d := range []string{filepath.Join(root, "private"), filepath.Join(root, "ui")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "private", "plan.tsx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "outside.tsx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	links := map[string]string{
		filepath.Join(root, "ui", "plan.tsx"):   filepath.Join("..", "private", "plan.tsx"),
		filepath.Join(root, "ui", "shared"):     filepath.Join("..", "private"),
		filepath.Join(root, "ui", "escape.tsx"): filepath.Join(base, "outside.tsx"),
	}
	for link, target := range links {
		if err := os.Symlink(target, link); err != nil {
			t.Fatalf("symlink %s: %v", link, err)
		}
	}

	tests := []struct {
		rel     string
		want    string
		wantErr bool
	}{
		{"private/plan.tsx", "private/plan.tsx", false},
		{"ui/plan.tsx", "private/plan.tsx", false},
		{"ui/shared/plan.tsx", "private/plan.tsx", false},
		{"ui/escape.tsx", "", true},
		{"ui/missing.tsx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, err := ResolveWithin(root, tt.rel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveWithin(%q) error = %v, wantErr %v", tt.rel, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveWithin(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}
