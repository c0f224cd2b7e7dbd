package builder

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/trainzkit/tzbuild/pkg/asset"
	"github.com/trainzkit/tzbuild/pkg/logger"
)

// stage materializes a working copy of the asset's subtree and rewrites its
// identity to the dummy kuid. The returned release func removes an ephemeral
// staging directory on every exit path; a configured persistent directory is
// reset here instead and kept afterwards.
func (b *Builder) stage(a asset.Asset) (string, func(), error) {
	staged, release, err := b.acquireStagingDir()
	if err != nil {
		return "", nil, err
	}
	b.log.Verbosef(logger.SeverityInfo, "Staging into: %s", staged)

	if err := copyTree(a.Root, staged); err != nil {
		release()
		return "", nil, fmt.Errorf("failed to copy asset tree: %w", err)
	}

	b.log.Verbosef(logger.SeverityInfo, "Replacing kuid...")
	if err := rewriteIdentity(staged); err != nil {
		release()
		return "", nil, err
	}

	return staged, release, nil
}

func (b *Builder) acquireStagingDir() (string, func(), error) {
	if b.opts.StagingDir != "" {
		if err := os.RemoveAll(b.opts.StagingDir); err != nil {
			return "", nil, fmt.Errorf("failed to reset staging directory: %w", err)
		}
		if err := os.MkdirAll(b.opts.StagingDir, 0o755); err != nil {
			return "", nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
		return b.opts.StagingDir, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "tzbuild-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// rewriteIdentity replaces the staged marker file's identity line with the
// dummy tag, using the same pattern that matched it during discovery.
func rewriteIdentity(stagedRoot string) error {
	markerPath := filepath.Join(stagedRoot, asset.MarkerFile)
	data, err := os.ReadFile(markerPath)
	if err != nil {
		return fmt.Errorf("failed to read staged marker file: %w", err)
	}
	if err := os.WriteFile(markerPath, asset.ReplaceIdentity(data, dummyKUIDTag), 0o644); err != nil {
		return fmt.Errorf("failed to rewrite staged marker file: %w", err)
	}
	return nil
}

// copyTree copies the full file subtree at src into dst. dst must already
// exist. Entries that are neither regular files nor directories are skipped.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
