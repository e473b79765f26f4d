package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

// Dir reads analysis documents stored as <dir>/<trackID>.json.
type Dir struct {
	root string
}

// NewDir returns a provider rooted at dir, which must exist.
func NewDir(dir string) (*Dir, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("analysis dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("analysis dir %s is not a directory", dir)
	}
	return &Dir{root: dir}, nil
}

func (d *Dir) GetAnalysis(ctx context.Context, trackID string) (*analysis.FeatureSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trackID = strings.TrimSpace(trackID)
	if trackID == "" || strings.ContainsAny(trackID, `/\`) || strings.Contains(trackID, "..") {
		return nil, fmt.Errorf("invalid track id %q", trackID)
	}

	data, err := os.ReadFile(filepath.Join(d.root, trackID+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("track %s: %w", trackID, ErrNotFound)
		}
		return nil, fmt.Errorf("read analysis: %w", err)
	}

	set, err := analysis.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode analysis for %s: %w", trackID, err)
	}
	return set, nil
}
