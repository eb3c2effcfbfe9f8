package syncer

import (
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/weread2notion/internal/notion"
	"github.com/mrlokans/weread2notion/internal/weread"
)

// Property names of the destination database.
const (
	PropBookName    = "BookName"
	PropBookID      = "BookId"
	PropISBN        = "ISBN"
	PropURL         = "URL"
	PropAuthor      = "Author"
	PropSort        = "Sort"
	PropRecommended = "Recommended"
	PropCover       = "Cover"
	PropCategories  = "Categories"
	PropStatus      = "Status"
	PropReadingTime = "ReadingTime"
	PropProgress    = "Progress"
	PropFinishDate  = "Finish_Date"
)

const (
	statusFinished = "读完"
	statusReading  = "在读"

	finishDateLayout   = "2006-01-02 15:04:05"
	finishDateTimeZone = "Asia/Shanghai"
)

// pageProperties assembles the property map of a book page.
func pageProperties(book weread.Book, cover, readerURL string, info weread.BookInfo, read *weread.ReadInfo) map[string]any {
	props := map[string]any{
		PropBookName:    notion.Title(book.Title),
		PropBookID:      notion.RichText(book.BookID),
		PropISBN:        notion.RichText(info.ISBN),
		PropURL:         notion.URL(readerURL),
		PropAuthor:      notion.RichText(book.Author),
		PropSort:        notion.Number(book.Sort),
		PropRecommended: notion.Number(info.Rating),
		PropCover:       notion.ExternalFile("Cover", cover),
	}
	if book.Categories != nil {
		props[PropCategories] = notion.MultiSelect(book.Categories)
	}

	if read != nil {
		status := statusReading
		if read.Finished() {
			status = statusFinished
		}
		props[PropStatus] = notion.Select(status)
		props[PropReadingTime] = notion.RichText(FormatReadingTime(read.ReadingTime))
		props[PropProgress] = notion.Number(read.ReadingProgress)
		if read.FinishedDate != nil {
			finished := time.Unix(*read.FinishedDate, 0).UTC().Format(finishDateLayout)
			props[PropFinishDate] = notion.Date(finished, finishDateTimeZone)
		}
	}

	return props
}

// pageIcon uses the cover as page icon when it is a remote URL.
func pageIcon(cover string) map[string]any {
	if !strings.HasPrefix(cover, "http") {
		return nil
	}
	return notion.ExternalIcon(cover)
}

// FormatReadingTime renders seconds as "已读N小时M分钟". Durations under a
// minute render as an empty string.
func FormatReadingTime(seconds int64) string {
	var b strings.Builder
	if seconds/60 > 0 {
		b.WriteString("已读")
	}
	if hours := seconds / 3600; hours > 0 {
		fmt.Fprintf(&b, "%d小时", hours)
	}
	if minutes := seconds % 3600 / 60; minutes > 0 {
		fmt.Fprintf(&b, "%d分钟", minutes)
	}
	return b.String()
}
