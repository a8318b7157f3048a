package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchAllCombinedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		payload := map[string]listEntry{
			"go":   {Key: "go", Name: "Go", Contents: "*.exe\n"},
			"rust": {Name: "Rust", Contents: "target/\n"}, // key omitted in body
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)

	client := NewClient(nil, server.URL)
	fetched, err := client.FetchAll(context.Background(), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, fetched, 2)
	assert.Equal(t, "rust", fetched["rust"].Key)
	assert.Equal(t, "*.exe\n", fetched["go"].Contents)
}

func TestFetchAllFallsBackToPerKeyShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/list" && r.URL.Query().Get("format") == "json":
			http.NotFound(w, r)
		case r.URL.Path == "/list":
			fmt.Fprint(w, "go,node\nrust")
		case r.URL.Path == "/node":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			fmt.Fprintf(w, "contents of %s", r.URL.Path[1:])
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(nil, server.URL)
	fetched, err := client.FetchAll(context.Background(), zap.NewNop())
	require.NoError(t, err)

	// The failing key is skipped, not fatal.
	require.Len(t, fetched, 2)
	assert.Equal(t, "contents of go", fetched["go"].Contents)
	assert.Equal(t, "contents of rust", fetched["rust"].Contents)
	_, ok := fetched["node"]
	assert.False(t, ok)
}

func TestFetchAllFailsWhenNothingObtained(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/list" && r.URL.RawQuery == "":
			fmt.Fprint(w, "go,rust")
		default:
			http.Error(w, "unavailable", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(nil, server.URL)
	_, err := client.FetchAll(context.Background(), zap.NewNop())
	require.Error(t, err)
}

func TestSplitKeyList(t *testing.T) {
	keys := splitKeyList("go,node\nrust, dart \n\n")
	assert.Equal(t, []string{"go", "node", "rust", "dart"}, keys)
}
