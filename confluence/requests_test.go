package confluence_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/confluence-copier/confluence"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

const pageJSON = `{
	"id": "123456",
	"type": "page",
	"status": "current",
	"title": "Child",
	"space": {"id": 1, "key": "ENG", "name": "Engineering"},
	"version": {"number": 3, "when": "2024-01-02T03:04:05.000Z"},
	"body": {"storage": {"value": "<p>Hello</p>", "representation": "storage"}},
	"ancestors": [
		{"id": "1", "type": "page", "title": "Home"},
		{"id": "2", "type": "page", "title": "Parent"}
	],
	"_links": {"webui": "/spaces/ENG/pages/123456/Child"}
}`

func newTestAPI(t *testing.T, handler http.HandlerFunc, auth confluence.Auth) *confluence.API {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := confluence.NewAPI(srv.URL+"/wiki", auth)
	require.NoError(t, err)
	return api
}

func TestNewAPI(t *testing.T) {
	t.Run("missing_endpoint", func(t *testing.T) {
		_, err := confluence.NewAPI("  ", confluence.Auth{Token: "t"})
		require.Error(t, err)
	})

	t.Run("missing_token", func(t *testing.T) {
		_, err := confluence.NewAPI("https://example.atlassian.net/wiki", confluence.Auth{Username: "me"})
		require.Error(t, err)
	})

	t.Run("not_http", func(t *testing.T) {
		_, err := confluence.NewAPI("ftp://example.com", confluence.Auth{Token: "t"})
		require.Error(t, err)
	})

	t.Run("adds_trailing_slash", func(t *testing.T) {
		api, err := confluence.NewAPI("https://example.atlassian.net/wiki", confluence.Auth{Token: "t"})
		require.NoError(t, err)
		assert.Equal(t, "https://example.atlassian.net/wiki/", api.BaseURI.String())
		assert.Equal(t, "https://example.atlassian.net/wiki/spaces/X", api.WebURL("/spaces/X"))
	})
}

func TestGetPageWithAncestors(t *testing.T) {
	var gotPath, gotExpand string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotExpand = r.URL.Query().Get("expand")
		fmt.Fprint(w, pageJSON)
	}, confluence.Auth{Token: "t"})

	page, err := api.GetPageWithAncestors(context.Background(), 123456)
	require.NoError(t, err)

	assert.Equal(t, "/wiki/rest/api/content/123456", gotPath)
	assert.Equal(t, "space,version,ancestors", gotExpand)

	assert.Equal(t, "Child", page.Title)
	require.NotNil(t, page.Space)
	assert.Equal(t, "Engineering", page.Space.Name)
	assert.Equal(t, 3, page.VersionNumber())
	require.Len(t, page.Ancestors, 2)
	assert.Equal(t, "Home", page.Ancestors[0].Title)
	assert.Equal(t, "Parent", page.Ancestors[1].Title)

	body, ok := page.StorageValue()
	require.True(t, ok)
	assert.Equal(t, "<p>Hello</p>", body)
}

func TestAuthHeaders(t *testing.T) {
	tests := []struct {
		name string
		auth confluence.Auth
		want func(t *testing.T, r *http.Request)
	}{
		{
			name: "basic",
			auth: confluence.Auth{Username: "me@example.com", Token: "secret"},
			want: func(t *testing.T, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				require.True(t, ok, "basic auth should be set")
				assert.Equal(t, "me@example.com", user)
				assert.Equal(t, "secret", pass)
			},
		},
		{
			name: "bearer",
			auth: confluence.Auth{Token: "pat"},
			want: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer pat", r.Header.Get("Authorization"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *http.Request
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Clone(context.Background())
				fmt.Fprint(w, `{"displayName": "Me", "accountId": "abc"}`)
			}, tt.auth)

			user, err := api.CurrentUser(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "Me", user.DisplayName)
			require.NotNil(t, got)
			assert.Equal(t, "/wiki/rest/api/user/current", got.URL.Path)
			tt.want(t, got)
		})
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		is      error
		message string
	}{
		{name: "not_found", status: http.StatusNotFound, body: `{"statusCode":404,"message":"No content found with id: 1"}`, is: confluence.ErrNotFound, message: "No content found with id: 1"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: ``, is: confluence.ErrAuthentication},
		{name: "forbidden", status: http.StatusForbidden, body: `{"message":"nope"}`, is: confluence.ErrAuthentication, message: "nope"},
		{name: "conflict", status: http.StatusConflict, body: `{"message":"Version must be incremented"}`, message: "Version must be incremented"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}, confluence.Auth{Token: "t"})

			_, err := api.GetPage(context.Background(), 1)
			require.Error(t, err)

			var statusErr *confluence.StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.message, statusErr.Message)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.NotErrorIs(t, err, confluence.ErrNetwork)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	api, err := confluence.NewAPI(srv.URL, confluence.Auth{Token: "t"})
	require.NoError(t, err)
	srv.Close()

	_, err = api.GetPage(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, confluence.ErrNetwork)
	assert.NotErrorIs(t, err, confluence.ErrNotFound)
}

func TestUpdatePage(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody map[string]any
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		fmt.Fprint(w, `{"id": "654321", "title": "Dest", "version": {"number": 4}}`)
	}, confluence.Auth{Token: "t"})

	updated, err := api.UpdatePage(context.Background(), confluence.UpdateContent{
		ID:      654321,
		Title:   "Dest",
		Body:    confluence.Body{Storage: &confluence.Storage{Value: "<p>Hello</p>"}},
		Version: confluence.Version{Number: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.VersionNumber())

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "page", gotBody["type"])
	assert.Equal(t, "Dest", gotBody["title"])
	assert.NotContains(t, gotBody, "id", "the ID travels in the URL")
	assert.Equal(t, map[string]any{"number": float64(4), "minorEdit": false}, gotBody["version"])
	assert.Equal(t, map[string]any{
		"storage": map[string]any{"value": "<p>Hello</p>", "representation": "storage"},
	}, gotBody["body"])
}

func TestListAllSpacesFollowsNextLinks(t *testing.T) {
	var starts []string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		starts = append(starts, start)
		assert.Equal(t, "global", r.URL.Query().Get("type"))

		switch start {
		case "":
			fmt.Fprint(w, `{"results":[{"key":"ENG","name":"Engineering"}],"_links":{"next":"/rest/api/space?type=global&limit=50&start=50"}}`)
		case "50":
			fmt.Fprint(w, `{"results":[{"key":"OPS","name":"Operations"}],"_links":{}}`)
		default:
			t.Errorf("unexpected start %q", start)
		}
	}, confluence.Auth{Token: "t"})

	spaces, err := api.ListAllSpaces(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "50"}, starts)
	require.Len(t, spaces, 2)
	assert.Equal(t, "Operations", spaces["OPS"].Name)
}

func TestGetPageReplaysFromCassette(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, pageJSON)
	}))
	defer srv.Close()

	cassette := filepath.Join(t.TempDir(), "page")

	fetch := func(mode recorder.Mode) *confluence.Content {
		r, err := recorder.NewWithOptions(&recorder.Options{
			CassetteName:       cassette,
			Mode:               mode,
			SkipRequestLatency: true,
			RealTransport:      http.DefaultTransport,
		})
		require.NoError(t, err)
		defer func() { require.NoError(t, r.Stop()) }()

		api, err := confluence.NewAPI(srv.URL, confluence.Auth{Token: "t"})
		require.NoError(t, err)
		api.Client = r.GetDefaultClient()

		page, err := api.GetPage(context.Background(), 123456)
		require.NoError(t, err)
		return page
	}

	recorded := fetch(recorder.ModeRecordOnly)
	assert.Equal(t, "Child", recorded.Title)
	assert.Equal(t, 1, hits)

	replayed := fetch(recorder.ModeReplayOnly)
	assert.Equal(t, "Child", replayed.Title)
	assert.Equal(t, 1, hits, "replay should not hit the server")
	assert.True(t, strings.HasPrefix(replayed.Links.WebUI, "/spaces/ENG"))
}
