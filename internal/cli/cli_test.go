package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateArgs(t *testing.T) {
	cmd := &cobra.Command{}
	assert.NoError(t, validateArgs(cmd, nil))
	assert.NoError(t, validateArgs(cmd, []string{"a", "b", "c", "d", "e"}))
	assert.Error(t, validateArgs(cmd, []string{"a"}))
	assert.Error(t, validateArgs(cmd, []string{"a", "b", "c", "d", "e", "f"}))
}

func TestLoadConfig_ArgumentsAndFlags(t *testing.T) {
	t.Setenv("WEREAD_COOKIE", "from-env")
	t.Setenv("STYLES", "2")
	t.Setenv("COLORS", "3")

	var flags allowListFlags
	cmd := &cobra.Command{}
	flags.bind(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse([]string{"--styles", "0,1"}))

	cfg, err := loadConfig(cmd, []string{"cookie", "token", "db", "refs/heads/main", "me/repo"}, &flags)
	require.NoError(t, err)

	assert.Equal(t, "cookie", cfg.WeRead.Cookie)
	assert.Equal(t, "token", cfg.Notion.Token)
	assert.Equal(t, "db", cfg.Notion.DatabaseID)
	assert.Equal(t, "refs/heads/main", cfg.Covers.Ref)
	assert.Equal(t, "me/repo", cfg.Covers.Repository)
	assert.Equal(t, []int{0, 1}, cfg.Sync.Styles)
	assert.Equal(t, []int{3}, cfg.Sync.Colors)
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	t.Setenv("WEREAD_COOKIE", "")
	t.Setenv("NOTION_TOKEN", "")
	t.Setenv("DATABASE_ID", "")

	var flags allowListFlags
	cmd := &cobra.Command{}
	flags.bind(cmd.Flags())

	_, err := loadConfig(cmd, nil, &flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRoot_RejectsWrongArgumentCount(t *testing.T) {
	root := NewRootCommand("test")
	root.SetArgs([]string{"only-one"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}

func TestSync_EndToEnd(t *testing.T) {
	wereadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusOK)
		case "/user/notebooks":
			_, _ = w.Write([]byte(`{"books":[{"bookId":"842520","sort":7,"book":{"bookId":"842520","title":"Book","author":"Author","cover":"https://cdn.example/s.jpg"}}]}`))
		case "/book/bookmarklist":
			_, _ = w.Write([]byte(`{"updated":[{"chapterUid":1,"range":"1-5","markText":"hello","style":1,"colorStyle":1}]}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer wereadServer.Close()

	var mu sync.Mutex
	var calls []string
	var appended int
	notionServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/databases/db/query":
			_, _ = w.Write([]byte(`{"results":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/pages":
			_, _ = w.Write([]byte(`{"id":"page-1"}`))
		case r.Method == http.MethodPatch && r.URL.Path == "/blocks/page-1/children":
			var body struct {
				Children []json.RawMessage `json:"children"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			results := make([]map[string]string, len(body.Children))
			for i := range results {
				results[i] = map[string]string{"id": "b"}
			}
			mu.Lock()
			appended += len(body.Children)
			mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer notionServer.Close()

	t.Setenv("WEREAD_BASE_URL", wereadServer.URL)
	t.Setenv("WEREAD_API_URL", wereadServer.URL)
	t.Setenv("NOTION_API_URL", notionServer.URL)
	t.Setenv("NOTION_PACE_INTERVAL", "0s")
	t.Setenv("COVER_DIR", t.TempDir())

	var stderr bytes.Buffer
	root := NewRootCommand("test")
	root.SetArgs([]string{"sync", "wr_vid=1; wr_skey=abc", "token", "db", "refs/heads/main", "me/repo"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&stderr)

	require.NoError(t, root.Execute(), stderr.String())

	assert.Equal(t, []string{
		"POST /databases/db/query",
		"POST /databases/db/query",
		"POST /pages",
		"PATCH /blocks/page-1/children",
	}, calls)
	assert.Equal(t, 1, appended)
}
