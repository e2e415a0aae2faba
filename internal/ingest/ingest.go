// Package ingest turns files on disk into pending documents.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/repository"
	"github.com/joseph-ayodele/docextract/internal/services/documents"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	DocumentID   string
	Deduplicated bool
	HashHex      string
	MIMEType     string
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Uploader stores a pending document; *documents.Service satisfies it.
type Uploader interface {
	Upload(ctx context.Context, req documents.UploadRequest) (*repository.Document, error)
}

// FSIngestor reads from the local filesystem. Files with identical content
// are uploaded once per application for the lifetime of the ingestor.
type FSIngestor struct {
	uploader Uploader
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[string]string // application + hash -> document id
}

func NewFSIngestor(u Uploader, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{uploader: u, logger: logger, seen: map[string]string{}}
}

// IngestPath uploads a single image file as a pending document of applicationID.
func (i *FSIngestor) IngestPath(ctx context.Context, applicationID, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}

	mt, ok := constants.MIMEFromExt(filepath.Ext(path))
	if !ok {
		return out, fmt.Errorf("unsupported or missing extension: %q", filepath.Ext(path))
	}
	out.MIMEType = mt

	data, err := os.ReadFile(path)
	if err != nil {
		i.logger.Error("read file failed", "path", path, "error", err)
		return out, err
	}
	sum := sha256.Sum256(data)
	out.HashHex = hex.EncodeToString(sum[:])

	key := applicationID + "/" + out.HashHex
	i.mu.Lock()
	if id, dup := i.seen[key]; dup {
		i.mu.Unlock()
		out.DocumentID, out.Deduplicated = id, true
		i.logger.Debug("duplicate file skipped", "path", path, "document_id", id)
		return out, nil
	}
	i.mu.Unlock()

	doc, err := i.uploader.Upload(ctx, documents.UploadRequest{
		ApplicationID: applicationID,
		Filename:      filepath.Base(path),
		MIMEType:      mt,
		Content:       data,
	})
	if err != nil {
		return out, err
	}
	out.DocumentID = doc.ID.String()

	i.mu.Lock()
	i.seen[key] = out.DocumentID
	i.mu.Unlock()
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested, and calls
// IngestPath for each image. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, applicationID, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
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
		if !Allowed(path) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, applicationID, path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return ctx.Err()
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Info("directory ingested", "root", root, "application_id", applicationID,
		"matched", stats.Matched, "succeeded", stats.Succeeded, "failed", stats.Failed, "deduplicated", stats.Deduplicated)
	return results, stats, nil
}

// Allowed reports whether path has an extension the pipeline accepts.
func Allowed(path string) bool {
	_, ok := constants.MIMEFromExt(filepath.Ext(path))
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
