package sink

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid simple path",
			path: "foo/bar.ts",
		},
		{
			name: "valid nested path",
			path: "a/b/c/d/file.proto",
		},
		{
			name: "valid single file",
			path: "schema.json",
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "empty",
		},
		{
			name:    "absolute path",
			path:    "/absolute/path.txt",
			wantErr: true,
			errMsg:  "absolute paths not allowed",
		},
		{
			name:    "windows drive path",
			path:    `C:\schemas\out.ts`,
			wantErr: true,
			errMsg:  "absolute paths not allowed",
		},
		{
			name:    "path traversal",
			path:    "foo/../bar.txt",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "leading traversal",
			path:    "../foo/bar.txt",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "current dir prefix",
			path:    "./foo/bar.txt",
			wantErr: true,
			errMsg:  "not clean",
		},
		{
			name:    "double slashes",
			path:    "foo//bar.txt",
			wantErr: true,
			errMsg:  "not clean",
		},
		{
			name:    "trailing slash",
			path:    "foo/bar/",
			wantErr: true,
			errMsg:  "not clean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidatePath(%q) error = %v, want error containing %q", tt.path, err, tt.errMsg)
			}
		})
	}
}

func TestFilesystemSink_WriteAndReadBack(t *testing.T) {
	s := NewMemSink()
	ctx := context.Background()

	content := []byte("export interface User {}\n")
	if err := s.WriteFile(ctx, "gen/user.ts", content); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := s.ReadFile("gen/user.ts")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("ReadFile() = %q, want %q", got, content)
	}
}

func TestFilesystemSink_CreatesParentDirectories(t *testing.T) {
	s := NewMemSink()

	if err := s.WriteFile(context.Background(), "a/b/c/out.proto", []byte("syntax")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := s.ReadFile("a/b/c/out.proto"); err != nil {
		t.Errorf("ReadFile() error = %v", err)
	}
}

func TestFilesystemSink_OverwriteReplaces(t *testing.T) {
	s := NewMemSink()
	ctx := context.Background()

	if err := s.WriteFile(ctx, "out.json", []byte("first")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := s.WriteFile(ctx, "out.json", []byte("second")); err != nil {
		t.Fatalf("WriteFile() overwrite error = %v", err)
	}

	got, err := s.ReadFile("out.json")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("ReadFile() = %q, want %q", got, "second")
	}
}

func TestFilesystemSink_NoOverwriteFails(t *testing.T) {
	s := NewMemSink()
	s.Overwrite = false
	ctx := context.Background()

	if err := s.WriteFile(ctx, "out.json", []byte("first")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := s.WriteFile(ctx, "out.json", []byte("second"))
	if err == nil {
		t.Fatal("WriteFile() expected error for existing file")
	}
	if !strings.Contains(err.Error(), "file already exists") {
		t.Errorf("WriteFile() error = %v, want error containing %q", err, "file already exists")
	}
}

func TestFilesystemSink_InvalidPath(t *testing.T) {
	s := NewMemSink()

	err := s.WriteFile(context.Background(), "../escape.txt", []byte("x"))
	if err == nil {
		t.Fatal("WriteFile() expected error for traversal path")
	}
	if !strings.Contains(err.Error(), "path traversal not allowed") {
		t.Errorf("WriteFile() error = %v, want traversal error", err)
	}
}

func TestFilesystemSink_CanceledContext(t *testing.T) {
	s := NewMemSink()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.WriteFile(ctx, "out.json", []byte("x")); err == nil {
		t.Fatal("WriteFile() expected error for canceled context")
	}
	if _, err := s.ReadFile("out.json"); err == nil {
		t.Error("ReadFile() expected error, canceled write must not land")
	}
}

func TestFilesystemSink_ConcurrentWrites(t *testing.T) {
	s := NewMemSink()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("gen/file%d.ts", i)
			errs[i] = s.WriteFile(ctx, path, []byte(path))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("WriteFile(%d) error = %v", i, err)
		}
		path := fmt.Sprintf("gen/file%d.ts", i)
		got, err := s.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", path, err)
		}
		if string(got) != path {
			t.Errorf("ReadFile(%s) = %q, want %q", path, got, path)
		}
	}
}
