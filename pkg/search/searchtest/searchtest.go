// Package searchtest serves a stand-in Elasticsearch endpoint over HTTP for tests.
package searchtest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/school-inventory-service/pkg/search"
	"github.com/stretchr/testify/require"
)

// Open starts a server that answers the cluster info call itself and hands every other
// request to h, then returns a client bound to it.
func Open(t testing.TB, h http.HandlerFunc) *search.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet && r.URL.Path == "/" {
			_, _ = w.Write([]byte(`{"version":{"number":"8.19.1","build_flavor":"default"},"tagline":"You Know, for Search"}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := search.NewClient(&search.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return c
}
