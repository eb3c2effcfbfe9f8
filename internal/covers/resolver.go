// Package covers turns WeRead cover URLs into URLs the workspace can embed.
package covers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrlokans/weread2notion/internal/weread"
)

// articleAuthor marks official-account articles, whose covers lack an
// extension.
const articleAuthor = "公众号"

// Resolver rewrites cover URLs. Covers that are not plain .jpg URLs are
// downloaded into the cache and served from the repository that hosts the
// sync job.
type Resolver struct {
	cache      *Cache
	repository string
	branch     string
	logger     zerolog.Logger
}

// NewResolver creates a resolver publishing downloaded covers under
// https://raw.githubusercontent.com/<repository>/<branch>/<cache dir>/.
func NewResolver(cache *Cache, repository, branch string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		cache:      cache,
		repository: repository,
		branch:     branch,
		logger:     logger.With().Str("component", "covers").Logger(),
	}
}

// BranchFromRef returns the last path segment of a git ref such as
// "refs/heads/main".
func BranchFromRef(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Resolve returns the cover URL to store for a book. When the download of a
// non-jpg cover fails the original URL is kept.
func (r *Resolver) Resolve(ctx context.Context, book weread.Book) string {
	cover := book.Cover
	if book.Author == articleAuthor && strings.HasSuffix(cover, "/0") {
		cover += ".jpg"
	}

	if !strings.HasPrefix(cover, "http") || strings.HasSuffix(cover, ".jpg") {
		return cover
	}

	localPath, err := r.cache.Fetch(ctx, cover)
	if err != nil {
		r.logger.Warn().Err(err).Str("book_id", book.BookID).Str("cover", cover).Msg("cover download failed")
		return cover
	}

	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s",
		r.repository, r.branch, filepath.ToSlash(localPath))
}
