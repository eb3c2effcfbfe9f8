package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPacer struct {
	mu    sync.Mutex
	calls int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return ctx.Err()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *countingPacer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	pacer := &countingPacer{}
	client := NewClient("secret", Options{
		BaseURL: server.URL,
		Pacer:   pacer,
		Logger:  zerolog.Nop(),
	})
	return client, pacer
}

func blocksOf(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"type": "paragraph", "n": i}
	}
	return out
}

// appendHandler answers append calls with one created id per child.
func appendHandler(t *testing.T, sizes *[]int, drop int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultVersion, r.Header.Get("Notion-Version"))

		var body struct {
			Children []map[string]any `json:"children"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*sizes = append(*sizes, len(body.Children))

		n := len(body.Children) - drop
		results := make([]map[string]string, 0, n)
		for i := 0; i < n; i++ {
			results = append(results, map[string]string{"id": fmt.Sprintf("blk-%d-%d", len(*sizes), i)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}
}

func TestBatches(t *testing.T) {
	sizes := func(b [][]int) []int {
		out := make([]int, 0, len(b))
		for _, x := range b {
			out = append(out, len(x))
		}
		return out
	}

	assert.Equal(t, []int{100, 100, 50}, sizes(Batches(make([]int, 250), 100)))
	assert.Equal(t, []int{100, 100}, sizes(Batches(make([]int, 200), 100)))
	assert.Equal(t, []int{1}, sizes(Batches(make([]int, 1), 100)))
	assert.Empty(t, Batches(make([]int, 0), 100))
}

func TestAppendChildren_SlicesIntoBatches(t *testing.T) {
	var sizes []int
	client, pacer := newTestClient(t, appendHandler(t, &sizes, 0))

	ids, err := client.AppendChildren(context.Background(), "page-1", blocksOf(250))
	require.NoError(t, err)

	assert.Equal(t, []int{100, 100, 50}, sizes)
	assert.Len(t, ids, 250)
	assert.Equal(t, "blk-1-0", ids[0])
	assert.Equal(t, "blk-3-49", ids[249])
	assert.Equal(t, 3, pacer.calls)
}

func TestAppendChildren_Empty(t *testing.T) {
	var sizes []int
	client, pacer := newTestClient(t, appendHandler(t, &sizes, 0))

	ids, err := client.AppendChildren(context.Background(), "page-1", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, sizes)
	assert.Zero(t, pacer.calls)
}

func TestAppendChildren_CountMismatch(t *testing.T) {
	var sizes []int
	client, _ := newTestClient(t, appendHandler(t, &sizes, 1))

	ids, err := client.AppendChildren(context.Background(), "page-1", blocksOf(120))
	assert.ErrorIs(t, err, ErrIncompleteAppend)
	assert.Nil(t, ids)
	assert.Equal(t, []int{100, 20}, sizes)
}

func TestAppendGrandchildren(t *testing.T) {
	var parents []string
	client, pacer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		parents = append(parents, r.URL.Path)
		_, _ = io.WriteString(w, `{"results":[{"id":"q"}]}`)
	})

	ids := []string{"a", "b", "c"}
	attachments := map[int]map[string]any{
		2: {"type": "quote"},
		0: {"type": "quote"},
	}
	require.NoError(t, client.AppendGrandchildren(context.Background(), ids, attachments))

	assert.Equal(t, []string{"/blocks/a/children", "/blocks/c/children"}, parents)
	assert.Equal(t, 2, pacer.calls)

	err := client.AppendGrandchildren(context.Background(), ids, map[int]map[string]any{5: {}})
	assert.Error(t, err)
}

func TestDatabase_MaxNumber(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{"latest sort", `{"results":[{"id":"p","properties":{"Sort":{"id":"x","type":"number","number":1575503418}}}]}`, 1575503418},
		{"empty database", `{"results":[]}`, 0},
		{"null number", `{"results":[{"id":"p","properties":{"Sort":{"number":null}}}]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/databases/db-1/query", r.URL.Path)

				var q map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
				assert.Equal(t, float64(1), q["page_size"])
				sorts := q["sorts"].([]any)
				assert.Equal(t, "descending", sorts[0].(map[string]any)["direction"])

				_, _ = io.WriteString(w, tt.body)
			})

			got, err := client.Database("db-1").MaxNumber(context.Background(), "Sort")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatabase_FindByText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var q struct {
			Filter struct {
				Property string `json:"property"`
				RichText struct {
					Equals string `json:"equals"`
				} `json:"rich_text"`
			} `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "BookId", q.Filter.Property)
		assert.Equal(t, "b1", q.Filter.RichText.Equals)
		_, _ = io.WriteString(w, `{"results":[{"id":"p1"},{"id":"p2"}]}`)
	})

	ids, err := client.Database("db").FindByText(context.Background(), "BookId", "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}

func TestCreatePage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pages", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		parent := body["parent"].(map[string]any)
		assert.Equal(t, "db", parent["database_id"])
		assert.Contains(t, body, "icon")
		_, _ = io.WriteString(w, `{"id":"new-page"}`)
	})

	id, err := client.Database("db").CreatePage(context.Background(),
		ExternalIcon("https://c/1.jpg"),
		map[string]any{"BookName": Title("A")})
	require.NoError(t, err)
	assert.Equal(t, "new-page", id)
}

func TestErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"object":"error","status":400,"code":"validation_error","message":"bad"}`)
		})

		err := client.DeleteBlock(context.Background(), "x")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "validation_error", apiErr.Code)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("unauthorized", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`)
		})

		err := client.DeleteBlock(context.Background(), "x")
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})
}

func TestNewPacer(t *testing.T) {
	pacer := NewPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, pacer.Wait(ctx))
	require.NoError(t, pacer.Wait(ctx))
	require.NoError(t, pacer.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)

	unlimited := NewPacer(0)
	for i := 0; i < 10; i++ {
		require.NoError(t, unlimited.Wait(ctx))
	}
}

func TestProperties(t *testing.T) {
	assert.Equal(t, map[string]any{"number": 0.5}, Number(0.5))
	assert.Equal(t, map[string]any{"select": map[string]any{"name": "在读"}}, Select("在读"))

	ms := MultiSelect([]string{"a", "b"})
	assert.Len(t, ms["multi_select"], 2)
}
