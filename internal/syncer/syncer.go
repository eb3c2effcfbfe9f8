// Package syncer drives one synchronization run from the reading platform to
// the destination database.
package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrlokans/weread2notion/internal/annotations"
	"github.com/mrlokans/weread2notion/internal/blocks"
	"github.com/mrlokans/weread2notion/internal/bookid"
	"github.com/mrlokans/weread2notion/internal/notion"
	"github.com/mrlokans/weread2notion/internal/weread"
)

// Options configures a Syncer.
type Options struct {
	// WebBaseURL is the host used for reader deep links.
	WebBaseURL string
	Logger     zerolog.Logger
}

// Syncer rebuilds the destination page of every book whose recency counter
// moved past the watermark.
type Syncer struct {
	source    Source
	workspace Workspace
	covers    CoverResolver
	builder   *blocks.Builder
	webURL    string
	logger    zerolog.Logger
}

// Result summarizes a run.
type Result struct {
	RunID   string
	Total   int
	Synced  int
	Skipped int
	Failed  int

	// Incomplete counts books whose block append came back short; their
	// nested quotes were not written.
	Incomplete int
}

// New creates a Syncer.
func New(source Source, workspace Workspace, covers CoverResolver, builder *blocks.Builder, opts Options) *Syncer {
	if opts.WebBaseURL == "" {
		opts.WebBaseURL = weread.DefaultBaseURL
	}
	return &Syncer{
		source:    source,
		workspace: workspace,
		covers:    covers,
		builder:   builder,
		webURL:    opts.WebBaseURL,
		logger:    opts.Logger.With().Str("component", "syncer").Logger(),
	}
}

// Run performs one synchronization pass. Per-book failures are logged and
// counted; an expired session or rejected destination token aborts the run.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: uuid.NewString()}
	logger := s.logger.With().Str("run_id", result.RunID).Logger()

	watermark, err := s.workspace.MaxNumber(ctx, PropSort)
	if err != nil {
		return result, fmt.Errorf("failed to read watermark: %w", err)
	}

	books, err := s.source.Notebooks(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch notebooks: %w", err)
	}
	result.Total = len(books)
	logger.Info().Int64("watermark", watermark).Int("books", len(books)).Msg("sync started")

	for i, book := range books {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if book.Sort <= watermark {
			result.Skipped++
			continue
		}

		bookLogger := logger.With().Str("book_id", book.BookID).Logger()
		bookLogger.Info().Str("title", book.Title).Msgf("syncing book %d/%d", i+1, len(books))

		err := s.syncBook(ctx, book, bookLogger)
		switch {
		case err == nil:
			result.Synced++
		case errors.Is(err, notion.ErrIncompleteAppend):
			result.Synced++
			result.Incomplete++
		case isFatal(err):
			result.Failed++
			return result, err
		default:
			result.Failed++
			bookLogger.Error().Err(err).Msg("book sync failed")
		}
	}

	logger.Info().
		Int("synced", result.Synced).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int("incomplete", result.Incomplete).
		Msg("sync finished")
	return result, nil
}

func (s *Syncer) syncBook(ctx context.Context, book weread.Book, logger zerolog.Logger) error {
	cover := s.covers.Resolve(ctx, book)

	existing, err := s.workspace.FindByText(ctx, PropBookID, book.BookID)
	if err != nil {
		return fmt.Errorf("failed to find existing pages: %w", err)
	}
	for _, id := range existing {
		if err := s.workspace.DeleteBlock(ctx, id); err != nil {
			return fmt.Errorf("failed to delete page %s: %w", id, err)
		}
	}

	info, err := s.source.BookInfo(ctx, book.BookID)
	if err != nil {
		if isFatal(err) {
			return err
		}
		logger.Warn().Err(err).Msg("book info unavailable, using defaults")
		info = weread.BookInfo{}
	}

	read, err := s.source.ReadInfo(ctx, book.BookID)
	if err != nil {
		if isFatal(err) {
			return err
		}
		logger.Warn().Err(err).Msg("read info unavailable")
		read = nil
	}

	props := pageProperties(book, cover, bookid.ReaderURL(s.webURL, book.BookID), info, read)
	pageID, err := s.workspace.CreatePage(ctx, pageIcon(cover), props)
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	chapters, err := s.source.ChapterInfos(ctx, book.BookID)
	if err != nil {
		if isFatal(err) {
			return err
		}
		logger.Warn().Err(err).Msg("chapter info unavailable")
		chapters = nil
	}

	highlights, err := s.source.Bookmarks(ctx, book.BookID)
	if err != nil {
		if isFatal(err) {
			return err
		}
		logger.Warn().Err(err).Msg("bookmarks unavailable")
		highlights = nil
	}

	summaries, notes, err := s.source.Reviews(ctx, book.BookID)
	if err != nil {
		if isFatal(err) {
			return err
		}
		logger.Warn().Err(err).Msg("reviews unavailable")
		summaries, notes = nil, nil
	}

	tree := s.builder.Build(chapters, summaries, annotations.Merge(highlights, notes))
	if len(tree.Blocks) == 0 {
		return nil
	}

	ids, err := s.workspace.AppendChildren(ctx, pageID, blocks.Payloads(tree.Blocks))
	if err != nil {
		if errors.Is(err, notion.ErrIncompleteAppend) {
			logger.Warn().Err(err).Msg("skipping nested quotes")
		}
		return err
	}

	if len(tree.Attachments) == 0 {
		return nil
	}
	attachments := make(map[int]map[string]any, len(tree.Attachments))
	for index, quote := range tree.Attachments {
		attachments[index] = quote.Payload()
	}
	if err := s.workspace.AppendGrandchildren(ctx, ids, attachments); err != nil {
		return fmt.Errorf("failed to append nested quotes: %w", err)
	}
	return nil
}

func isFatal(err error) bool {
	return errors.Is(err, weread.ErrSessionExpired) ||
		errors.Is(err, notion.ErrUnauthorized) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
