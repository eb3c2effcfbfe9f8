// Package bookid derives the external book identifier used by the WeRead web
// reader. Links built from it must resolve on the platform, so the encoding
// reproduces the platform's own algorithm exactly.
package bookid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const (
	numericCode    = "3"
	textCode       = "4"
	chunkWidth     = 9
	minPrefixLen   = 20
	checksumLength = 3
)

// Encode converts a WeRead book id into the identifier that appears in
// https://weread.qq.com/web/reader/<id> links.
func Encode(bookID string) string {
	digest := md5Hex(bookID)
	code, segments := transform(bookID)

	var b strings.Builder
	b.WriteString(digest[:3])
	b.WriteString(code)
	b.WriteString("2")
	b.WriteString(digest[len(digest)-2:])

	for i, segment := range segments {
		fmt.Fprintf(&b, "%02x", len(segment))
		b.WriteString(segment)
		if i < len(segments)-1 {
			b.WriteString("g")
		}
	}

	result := b.String()
	if len(result) < minPrefixLen {
		result += digest[:minPrefixLen-len(result)]
	}

	return result + md5Hex(result)[:checksumLength]
}

// ReaderURL builds the web reader deep link for a book.
func ReaderURL(baseURL, bookID string) string {
	return strings.TrimRight(baseURL, "/") + "/web/reader/" + Encode(bookID)
}

// transform splits numeric ids into 9-digit chunks rendered as hex, and
// renders any other id as the concatenated hex ordinals of its characters.
func transform(bookID string) (string, []string) {
	if isNumeric(bookID) {
		segments := make([]string, 0, len(bookID)/chunkWidth+1)
		for i := 0; i < len(bookID); i += chunkWidth {
			end := min(i+chunkWidth, len(bookID))
			// A chunk of at most nine ASCII digits always fits.
			value, _ := strconv.ParseUint(bookID[i:end], 10, 64)
			segments = append(segments, strconv.FormatUint(value, 16))
		}
		return numericCode, segments
	}

	var b strings.Builder
	for _, r := range bookID {
		b.WriteString(strconv.FormatInt(int64(r), 16))
	}
	return textCode, []string{b.String()}
}

// isNumeric reports whether id consists only of ASCII digits. The empty
// string counts as numeric.
func isNumeric(id string) bool {
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
