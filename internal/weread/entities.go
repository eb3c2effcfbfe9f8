package weread

import "sort"

// DefaultChapterUID is assumed for highlights that carry no chapter.
const DefaultChapterUID = 1

// ReviewType discriminates the entries of the review list endpoint.
type ReviewType int

const (
	ReviewTypeNote    ReviewType = 1 // note attached to a position in the text
	ReviewTypeSummary ReviewType = 4 // review of the whole book
)

// Book is one entry of the user's notebook list.
type Book struct {
	BookID string
	Title  string
	Author string
	Cover  string
	// Sort is advanced by the platform whenever the book's annotations
	// change. It serves as the sync watermark.
	Sort int64
	// Categories is nil when the platform sends no categories.
	Categories []string
}

// Chapter describes one entry of a book's table of contents.
type Chapter struct {
	ChapterUID int
	Level      int
	Title      string
}

// Highlight is a positional annotation. Notes are normalized into this shape
// before merging, with their content carried in MarkText.
type Highlight struct {
	ChapterUID int
	Range      string
	MarkText   string
	Style      *int
	ColorStyle *int
	ReviewID   string
	Abstract   string
}

// HasReview reports whether the user also wrote a note on this position.
func (h Highlight) HasReview() bool {
	return h.ReviewID != ""
}

// ReviewNote is a textual note attached to a position in the book.
type ReviewNote struct {
	ReviewID   string
	ChapterUID int
	Range      string
	Content    string
	Abstract   string
	Style      *int
	ColorStyle *int
}

// AsHighlight normalizes a note into the highlight shape.
func (r ReviewNote) AsHighlight() Highlight {
	return Highlight{
		ChapterUID: r.ChapterUID,
		Range:      r.Range,
		MarkText:   r.Content,
		Style:      r.Style,
		ColorStyle: r.ColorStyle,
		ReviewID:   r.ReviewID,
		Abstract:   r.Abstract,
	}
}

// Summary is a review of the whole book, rendered after all chapters.
type Summary struct {
	ReviewID   string
	Content    string
	Style      *int
	ColorStyle *int
}

// BookInfo holds the detail fields copied onto the destination page.
type BookInfo struct {
	ISBN   string
	Rating float64
}

// ReadInfo holds the reading progress of a book.
type ReadInfo struct {
	MarkedStatus    int
	ReadingTime     int64 // seconds
	ReadingProgress int   // percent
	FinishedDate    *int64
}

// MarkedStatusFinished is the marked status of a finished book.
const MarkedStatusFinished = 4

// Finished reports whether the user marked the book as read.
func (r ReadInfo) Finished() bool {
	return r.MarkedStatus == MarkedStatusFinished
}

// Wire formats. Optional fields are pointers so that absence can be told
// apart from zero.

type notebooksResponse struct {
	Books []notebookEntry `json:"books"`
}

type notebookEntry struct {
	BookID string     `json:"bookId"`
	Sort   int64      `json:"sort"`
	Book   bookDetail `json:"book"`
}

type bookDetail struct {
	BookID     string     `json:"bookId"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Cover      string     `json:"cover"`
	Categories []category `json:"categories"`
}

type category struct {
	Title string `json:"title"`
}

func (e notebookEntry) toBook() Book {
	id := e.Book.BookID
	if id == "" {
		id = e.BookID
	}
	book := Book{
		BookID: id,
		Title:  e.Book.Title,
		Author: e.Book.Author,
		Cover:  e.Book.Cover,
		Sort:   e.Sort,
	}
	if e.Book.Categories != nil {
		book.Categories = make([]string, 0, len(e.Book.Categories))
		for _, c := range e.Book.Categories {
			book.Categories = append(book.Categories, c.Title)
		}
	}
	return book
}

// sortBooks orders books by ascending recency, preserving the platform order
// for equal values.
func sortBooks(books []Book) {
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].Sort < books[j].Sort
	})
}

type bookmarkListResponse struct {
	Updated []bookmarkEntry `json:"updated"`
}

type bookmarkEntry struct {
	ChapterUID *int    `json:"chapterUid"`
	Range      string  `json:"range"`
	MarkText   string  `json:"markText"`
	Style      *int    `json:"style"`
	ColorStyle *int    `json:"colorStyle"`
	ReviewID   *string `json:"reviewId"`
	Abstract   string  `json:"abstract"`
}

func (e bookmarkEntry) toHighlight() Highlight {
	h := Highlight{
		ChapterUID: chapterOrDefault(e.ChapterUID),
		Range:      e.Range,
		MarkText:   e.MarkText,
		Style:      e.Style,
		ColorStyle: e.ColorStyle,
		Abstract:   e.Abstract,
	}
	if e.ReviewID != nil {
		h.ReviewID = *e.ReviewID
	}
	return h
}

type chapterInfosRequest struct {
	BookIDs  []string `json:"bookIds"`
	SyncKeys []int    `json:"synckeys"`
	TeenMode int      `json:"teenmode"`
}

type chapterInfosResponse struct {
	Data []struct {
		BookID  string          `json:"bookId"`
		Updated *[]chapterEntry `json:"updated"`
	} `json:"data"`
}

type chapterEntry struct {
	ChapterUID int    `json:"chapterUid"`
	Level      int    `json:"level"`
	Title      string `json:"title"`
}

type reviewListResponse struct {
	Reviews []reviewEntry `json:"reviews"`
}

type reviewEntry struct {
	ReviewID   string      `json:"reviewId"`
	Style      *int        `json:"style"`
	ColorStyle *int        `json:"colorStyle"`
	Review     *reviewBody `json:"review"`
}

type reviewBody struct {
	ReviewID   string     `json:"reviewId"`
	Type       ReviewType `json:"type"`
	ChapterUID *int       `json:"chapterUid"`
	Range      string     `json:"range"`
	Content    string     `json:"content"`
	Abstract   string     `json:"abstract"`
	Style      *int       `json:"style"`
	ColorStyle *int       `json:"colorStyle"`
}

func (r reviewBody) id(fallback string) string {
	if r.ReviewID != "" {
		return r.ReviewID
	}
	return fallback
}

// splitReviews separates whole-book summaries from positional notes.
// Entries of any other type are dropped.
func splitReviews(entries []reviewEntry) ([]Summary, []ReviewNote) {
	var summaries []Summary
	var notes []ReviewNote
	for _, e := range entries {
		if e.Review == nil {
			continue
		}
		r := *e.Review
		switch r.Type {
		case ReviewTypeSummary:
			summaries = append(summaries, Summary{
				ReviewID:   r.id(e.ReviewID),
				Content:    r.Content,
				Style:      e.Style,
				ColorStyle: e.ColorStyle,
			})
		case ReviewTypeNote:
			notes = append(notes, ReviewNote{
				ReviewID:   r.id(e.ReviewID),
				ChapterUID: chapterOrDefault(r.ChapterUID),
				Range:      r.Range,
				Content:    r.Content,
				Abstract:   r.Abstract,
				Style:      r.Style,
				ColorStyle: r.ColorStyle,
			})
		}
	}
	return summaries, notes
}

type bookInfoResponse struct {
	ISBN      string `json:"isbn"`
	NewRating int    `json:"newRating"`
}

type readInfoResponse struct {
	MarkedStatus    int    `json:"markedStatus"`
	ReadingTime     int64  `json:"readingTime"`
	ReadingProgress int    `json:"readingProgress"`
	FinishedDate    *int64 `json:"finishedDate"`
}

type errorResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func chapterOrDefault(uid *int) int {
	if uid == nil {
		return DefaultChapterUID
	}
	return *uid
}
