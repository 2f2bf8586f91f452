package search_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/fekuna/school-inventory-service/pkg/search/searchtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SearchIDsReportsTotalHits(t *testing.T) {
	var gotQuery map[string]any
	c := searchtest.Open(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/items/_search"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":42,"relation":"eq"},"hits":[{"_id":"b"},{"_id":"a"}]}}`))
	})

	ids, total, err := c.SearchIDs(context.Background(), "items", map[string]any{"from": 10}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.Equal(t, 42, total, "total counts every match, not just this page")
	assert.EqualValues(t, 10, gotQuery["from"])
}

func TestClient_SearchIDsError(t *testing.T) {
	c := searchtest.Open(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"parse"}`))
	})

	_, _, err := c.SearchIDs(context.Background(), "items", map[string]any{}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

