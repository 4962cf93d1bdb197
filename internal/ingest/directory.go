package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/nutrilabel/constants"
)

// ScanDirectory walks root and returns label files with an allowed extension,
// skipping hidden entries if requested. Files whose content was already seen
// in this walk are counted as duplicates and left out.
func ScanDirectory(root string, skipHidden bool, logger *slog.Logger) ([]Candidate, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var (
		out   []Candidate
		stats DirStats
		seen  = map[string]string{}
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("ingest.walk_error", "path", path, "error", walkErr)
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++

		ext := filepath.Ext(path)
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		size, hash, err := hashFile(path)
		if err != nil {
			logger.Warn("ingest.hash_error", "path", path, "error", err)
			stats.Failed++
			return nil
		}
		if first, dup := seen[hash]; dup {
			logger.Info("ingest.duplicate", "path", path, "same_as", first)
			stats.Duplicates++
			return nil
		}
		seen[hash] = path

		out = append(out, Candidate{
			Path:     path,
			FileType: constants.FileTypeForExt(ext),
			Size:     size,
			HashHex:  hash,
		})
		return nil
	})
	if err != nil {
		return out, stats, fmt.Errorf("walk: %w", err)
	}
	logger.Info("ingest.scan.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed,
	)
	return out, stats, nil
}
