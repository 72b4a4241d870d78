package capture

import (
	"context"
	"fmt"
	"os"
)

// Source provides the text of one dnsperf run
type Source interface {
	// Name identifies the capture in reports and artifacts
	Name() string
	Read(ctx context.Context) (string, error)
}

// File reads a capture saved on the local filesystem
type File struct {
	Path string
}

func (f File) Name() string {
	return f.Path
}

func (f File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read capture %s: %w", f.Path, err)
	}
	return string(data), nil
}

// Files returns a File source per path
func Files(paths ...string) []Source {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, File{Path: p})
	}
	return sources
}
