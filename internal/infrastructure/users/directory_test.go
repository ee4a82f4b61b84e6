package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/eventsales-service/internal/domain/user"
)

func newUsersServer(t *testing.T, known map[string]userPayload) (*httptest.Server, *atomic.Int32, *atomic.Int32) {
	t.Helper()
	var listCalls, oneCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		all := make([]userPayload, 0, len(known))
		for _, u := range known {
			all = append(all, u)
		}
		json.NewEncoder(w).Encode(all)
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		oneCalls.Add(1)
		u, ok := known[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(u)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &listCalls, &oneCalls
}

func TestHTTPDirectory_LookupByID(t *testing.T) {
	srv, listCalls, oneCalls := newUsersServer(t, map[string]userPayload{
		"u1": {ID: "u1", Name: "Ana", Email: "ana@example.com"},
		"u2": {ID: "u2", Name: "Bruno"},
	})
	dir := NewHTTPDirectory(srv.URL+"/", time.Second)

	found, err := dir.LookupUsers(context.Background(), []string{"u1", "u2", "ghost"})
	require.NoError(t, err)

	assert.Len(t, found, 2)
	assert.Equal(t, user.Summary{ID: "u1", Name: "Ana", Email: "ana@example.com", Found: true}, found["u1"])
	assert.NotContains(t, found, "ghost")
	assert.Equal(t, int32(3), oneCalls.Load())
	assert.Zero(t, listCalls.Load())
}

func TestHTTPDirectory_LookupManyUsesList(t *testing.T) {
	known := map[string]userPayload{}
	ids := make([]string, 0, perIDThreshold+2)
	for i := 0; i < perIDThreshold+2; i++ {
		id := fmt.Sprintf("u%d", i)
		ids = append(ids, id)
		if i%2 == 0 {
			known[id] = userPayload{ID: id, Name: strings.ToUpper(id)}
		}
	}
	known["other"] = userPayload{ID: "other"}

	srv, listCalls, oneCalls := newUsersServer(t, known)
	dir := NewHTTPDirectory(srv.URL, time.Second)

	found, err := dir.LookupUsers(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, found, (perIDThreshold+2)/2)
	assert.NotContains(t, found, "other")
	assert.Equal(t, "U0", found["u0"].Name)
	assert.Equal(t, int32(1), listCalls.Load())
	assert.Zero(t, oneCalls.Load())
}

func TestHTTPDirectory_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewHTTPDirectory(srv.URL, time.Second).LookupUsers(context.Background(), []string{"u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPDirectory_Empty(t *testing.T) {
	found, err := NewHTTPDirectory("http://127.0.0.1:1", time.Second).LookupUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestStaticDirectory(t *testing.T) {
	dir := NewStaticDirectory(user.Summary{ID: "u1", Name: "Ana"})

	found, err := dir.LookupUsers(context.Background(), []string{"u1", "u2"})
	require.NoError(t, err)
	assert.True(t, found["u1"].Found)
	assert.NotContains(t, found, "u2")

	empty, err := NewStaticDirectory().LookupUsers(context.Background(), []string{"u1"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
