package bookid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_KnownValues(t *testing.T) {
	tests := []struct {
		name   string
		bookID string
		want   string
	}{
		{"short numeric id", "23071792", "00632c0071600c30006b59e"},
		{"six digit id", "842520", "c9932ef05cdb18c999bed76"},
		{"ten digit id splits into two chunks", "3300064831", "b9632410813ab7fd3g011e5f"},
		{"nineteen digit id splits into three chunks", "1234567890123456789", "d7c329b0775bcd15g06bc614eg019204"},
		{"prefixed id takes the text branch", "CB_3300064831", "689429f1a43425f33333030303634383331406"},
		{"article id", "MP_WXS_3009296253", "1bd42d0224d505f5758535f333030393239363235334d8"},
		{"empty id is padded", "", "d41327ed41d8cd98f00b86b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.bookID))
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	for _, id := range []string{"1", "23071792", "CB_abc", "书"} {
		first := Encode(id)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Encode(id))
		}
		assert.GreaterOrEqual(t, len(first), minPrefixLen+checksumLength)
	}
}

func TestTransform(t *testing.T) {
	code, segments := transform("123456789")
	assert.Equal(t, numericCode, code)
	assert.Equal(t, []string{"75bcd15"}, segments)

	code, segments = transform("42")
	assert.Equal(t, numericCode, code)
	assert.Len(t, segments, 1)

	code, segments = transform("12a")
	assert.Equal(t, textCode, code)
	assert.Equal(t, []string{"313261"}, segments)

	code, segments = transform("书")
	assert.Equal(t, textCode, code)
	assert.Equal(t, []string{"4e66"}, segments)
}

func TestIsNumeric_ASCIIOnly(t *testing.T) {
	tests := map[string]bool{
		"":         true,
		"0":        true,
		"23071792": true,
		"123\n":    false,
		" 123":     false,
		"١٢٣":      false,
		"１２３":      false,
		"CB_1":     false,
	}
	for in, want := range tests {
		assert.Equal(t, want, isNumeric(in), "%q", in)
	}

	code, segments := transform("123\n")
	assert.Equal(t, textCode, code)
	assert.Equal(t, []string{"313233a"}, segments)
	assert.Equal(t, "ba1420f07313233aba1f4ba", Encode("123\n"))
}

func TestReaderURL(t *testing.T) {
	got := ReaderURL("https://weread.qq.com/", "23071792")
	assert.Equal(t, "https://weread.qq.com/web/reader/00632c0071600c30006b59e", got)
	assert.False(t, strings.Contains(got, "//web"))
}
