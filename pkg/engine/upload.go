package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DrSkyle/cargoload/pkg/storage"
)

// UploadArtifacts copies every file under dir into store below prefix.
// Failed files are logged and skipped; the count of uploaded files is returned.
func (e *Engine) UploadArtifacts(ctx context.Context, dir string, store storage.BlobStore, prefix string) (int, error) {
	e.Logger.Info("Uploading artifacts", "dir", dir, "prefix", prefix)

	uploaded := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read artifact %s: %w", relPath, err)
		}

		if err := store.Put(ctx, storage.JoinKey(prefix, filepath.ToSlash(relPath)), data); err != nil {
			e.Logger.Warn("Failed to upload artifact", "file", relPath, "error", err)
			return nil
		}
		uploaded++
		return nil
	})
	return uploaded, err
}
