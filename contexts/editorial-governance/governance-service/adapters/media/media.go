package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// Resolver joins media references onto a public base URL. References that
// are already absolute URLs pass through unchanged.
type Resolver struct {
	BaseURL string
}

func (r Resolver) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if parsed, err := url.Parse(ref); err == nil && parsed.IsAbs() {
		return ref
	}
	base := strings.TrimRight(strings.TrimSpace(r.BaseURL), "/")
	if base == "" {
		return "/" + strings.TrimLeft(ref, "/")
	}
	return base + "/" + strings.TrimLeft(ref, "/")
}

// FileRemover deletes media files stored under Root. With an empty Root it
// only logs what would have been removed.
type FileRemover struct {
	Root   string
	Logger *slog.Logger
}

func (r FileRemover) RemoveMedia(ctx context.Context, refs []string) error {
	logger := application.ResolveLogger(r.Logger)
	root := strings.TrimSpace(r.Root)
	var errs []error
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if root == "" {
			logger.Info("media removal skipped without storage root",
				"event", "governance_media_remove_skipped",
				"module", application.ModuleName,
				"layer", "adapter",
				"media_ref", ref,
			)
			continue
		}
		path, err := r.resolve(root, ref)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove media %q: %w", ref, err))
			continue
		}
		logger.Debug("media removed",
			"event", "governance_media_removed",
			"module", application.ModuleName,
			"layer", "adapter",
			"media_ref", ref,
		)
	}
	return errors.Join(errs...)
}

func (r FileRemover) resolve(root string, ref string) (string, error) {
	cleanRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	path := filepath.Join(cleanRoot, filepath.FromSlash(strings.TrimLeft(ref, "/")))
	rel, err := filepath.Rel(cleanRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("media reference %q escapes storage root", ref)
	}
	return path, nil
}

var _ ports.MediaResolver = Resolver{}
var _ ports.MediaRemover = FileRemover{}
