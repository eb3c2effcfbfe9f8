package syncer

import (
	"context"

	"github.com/mrlokans/weread2notion/internal/covers"
	"github.com/mrlokans/weread2notion/internal/notion"
	"github.com/mrlokans/weread2notion/internal/weread"
)

// Source reads a user's books and annotations from the reading platform.
// Implemented by *weread.Client.
type Source interface {
	Notebooks(ctx context.Context) ([]weread.Book, error)
	BookInfo(ctx context.Context, bookID string) (weread.BookInfo, error)
	ReadInfo(ctx context.Context, bookID string) (*weread.ReadInfo, error)
	ChapterInfos(ctx context.Context, bookID string) (map[int]weread.Chapter, error)
	Bookmarks(ctx context.Context, bookID string) ([]weread.Highlight, error)
	Reviews(ctx context.Context, bookID string) ([]weread.Summary, []weread.ReviewNote, error)
}

// Workspace is the destination database. Implemented by *notion.Database.
type Workspace interface {
	MaxNumber(ctx context.Context, property string) (int64, error)
	FindByText(ctx context.Context, property, value string) ([]string, error)
	CreatePage(ctx context.Context, icon map[string]any, properties map[string]any) (string, error)
	DeleteBlock(ctx context.Context, id string) error
	AppendChildren(ctx context.Context, parentID string, children []map[string]any) ([]string, error)
	AppendGrandchildren(ctx context.Context, ids []string, attachments map[int]map[string]any) error
}

// CoverResolver maps a book to the cover URL stored on its page.
// Implemented by *covers.Resolver.
type CoverResolver interface {
	Resolve(ctx context.Context, book weread.Book) string
}

var (
	_ Source        = (*weread.Client)(nil)
	_ Workspace     = (*notion.Database)(nil)
	_ CoverResolver = (*covers.Resolver)(nil)
)
