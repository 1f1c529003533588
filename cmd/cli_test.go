package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type apiCall struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          string
}

type fakeAPI struct {
	t      *testing.T
	token  string
	mu     sync.Mutex
	calls  []apiCall
	server *httptest.Server
}

// newFakeAPI serves a small gosocial backend under /v1 and points the CLI at it.
func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 7,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("cli-test"))
	require.NoError(t, err)

	api := &fakeAPI{t: t, token: token}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/authentication/token", func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.Unmarshal([]byte(api.last().Body), &credentials)
		if credentials.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid credentials"}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"data":{"token":%q}}`, api.token)
	})
	mux.HandleFunc("POST /v1/authentication/user", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"user":{"id":8,"username":"bob"}}}`)
	})
	mux.HandleFunc("GET /v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"data":{"id":%s,"username":"ada","email":"ada@example.com","is_active":true,"created_at":"2026-01-01T00:00:00Z"}}`, r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/users/feed", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":1,"title":"Hello gophers","content":"first","tags":"go, cli","userid":7,"created_at":"2026-03-01T09:00:00Z"}]}`)
	})
	mux.HandleFunc("GET /v1/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"data":{"id":%s,"title":"Hello gophers","content":"first","tags":["go"],"user_id":7,"version":2,"created_at":"2026-03-01T09:00:00Z","comments":[{"id":1,"post_id":%s,"user_id":9,"content":"Nice one","created_at":"2026-03-01T10:00:00Z"}]}}`, r.PathValue("id"), r.PathValue("id"))
	})
	mux.HandleFunc("PATCH /v1/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"data":{"id":%s,"title":"Renamed","content":"first","tags":[],"user_id":7}}`, r.PathValue("id"))
	})
	mux.HandleFunc("POST /v1/posts", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":42,"title":"New","content":"body","tags":["go"],"user_id":7}}`)
	})
	mux.HandleFunc("POST /v1/posts/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"data":{"id":5,"post_id":%s,"user_id":7,"content":"hi"}}`, r.PathValue("id"))
	})
	// One pattern covers activation and follow: separate patterns would overlap.
	mux.HandleFunc("PUT /v1/users/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "404" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"the requested resource could not be found"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /v1/users/{id}/followers", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":9,"username":"grace","is_active":true},{"id":10,"username":"linus","is_active":false}]}`)
	})

	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.calls = append(api.calls, apiCall{
			Method:        r.Method,
			Path:          r.URL.EscapedPath(),
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		api.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(api.server.Close)
	t.Setenv("GOSOCIAL_API_ORIGIN", api.server.URL)

	return api
}

func (a *fakeAPI) last() apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.calls) == 0 {
		return apiCall{}
	}
	return a.calls[len(a.calls)-1]
}

func (a *fakeAPI) requests() []apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]apiCall(nil), a.calls...)
}

func login(t *testing.T, home string) {
	t.Helper()
	_, _, err := executeCLI(t, home, "login", "--email", "ada@example.com", "--password", "secret")
	require.NoError(t, err)
}

func TestVersionDoesNotLoadConfig(t *testing.T) {
	t.Setenv("GOSOCIAL_API_TIMEOUT", "-1s")

	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gs dev")
}

func TestInvalidConfigFailsCommands(t *testing.T) {
	t.Setenv("GOSOCIAL_API_TIMEOUT", "-1s")

	_, _, err := executeCLI(t, t.TempDir(), "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestLoginPersistsSessionAndWhoamiHydratesIt(t *testing.T) {
	api := newFakeAPI(t)
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "login", "--email", "ada@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as ada.")

	info, err := os.Stat(filepath.Join(home, ".config", "gosocial", "session.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	profileCall := api.last()
	assert.Equal(t, "/v1/users/7", profileCall.Path)
	assert.Equal(t, "Bearer "+api.token, profileCall.Authorization)

	before := len(api.requests())
	stdout, _, err = executeCLI(t, home, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ada (7)")
	assert.Contains(t, stdout, "email: ada@example.com")
	assert.Len(t, api.requests(), before, "whoami should answer from the stored session")
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	newFakeAPI(t)
	home := t.TempDir()

	root := newRootCmd()
	root.SetIn(strings.NewReader("secret\n"))
	stdout, _, err := executeRoot(t, root, home, "login", "--email", "ada@example.com", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as ada.")
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	newFakeAPI(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "login", "--email", "ada@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	_, _, err = executeCLI(t, home, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginRequiresPassword(t *testing.T) {
	newFakeAPI(t)

	_, _, err := executeCLI(t, t.TempDir(), "login", "--email", "ada@example.com")
	require.ErrorIs(t, err, errPasswordRequired)
}

func TestLogoutClearsSessionAndAuthorization(t *testing.T) {
	api := newFakeAPI(t)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged out.")
	assert.NoFileExists(t, filepath.Join(home, ".config", "gosocial", "session.toml"))

	_, _, err = executeCLI(t, home, "feed")
	require.NoError(t, err)
	assert.Equal(t, "", api.last().Authorization)
}

func TestFeedListRendersPosts(t *testing.T) {
	api := newFakeAPI(t)
	home := t.TempDir()
	login(t, home)

	stdout, stderr, err := executeCLI(t, home, "feed", "list", "--page", "2", "--search", "hello", "--tags", "go, cli", "--sort", "asc")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Hello gophers #1")
	assert.Contains(t, stdout, "#go #cli")
	assert.Contains(t, stdout, "page 2")
	assert.Contains(t, stderr, "Loading feed")

	call := api.last()
	assert.Equal(t, "/v1/users/feed", call.Path)
	assert.Equal(t, "limit=10&offset=10&search=hello&sort=asc&tags=go%2Ccli", call.Query)
	assert.Equal(t, "Bearer "+api.token, call.Authorization)
}

func TestFeedRejectsUnknownSort(t *testing.T) {
	newFakeAPI(t)

	_, _, err := executeCLI(t, t.TempDir(), "feed", "--sort", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported sort order")
}

func TestFeedJSONAndYAMLOutput(t *testing.T) {
	newFakeAPI(t)
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "feed", "--format", "json")
	require.NoError(t, err)
	var result struct {
		Items []struct {
			ID     string   `json:"id"`
			Tags   []string `json:"tags"`
			UserID string   `json:"userId"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "1", result.Items[0].ID)
	assert.Equal(t, []string{"go", "cli"}, result.Items[0].Tags)
	assert.Equal(t, "7", result.Items[0].UserID)

	stdout, _, err = executeCLI(t, home, "feed", "--format", "yaml")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &decoded))
	assert.Contains(t, decoded, "items")

	_, _, err = executeCLI(t, home, "feed", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestPostGetShowsComments(t *testing.T) {
	newFakeAPI(t)

	stdout, _, err := executeCLI(t, t.TempDir(), "post", "get", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Hello gophers #3")
	assert.Contains(t, stdout, "comments: 1")
	assert.Contains(t, stdout, "Nice one")
}

func TestPostCreateEditAndComment(t *testing.T) {
	api := newFakeAPI(t)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "post", "create", "--title", " New ", "--content", "body", "--tags", "go, ,api")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Published post #42.")
	assert.JSONEq(t, `{"title":"New","content":"body","tags":["go","api"]}`, api.last().Body)

	stdout, _, err = executeCLI(t, home, "post", "edit", "42", "--title", "Renamed")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Updated post #42.")
	assert.Equal(t, http.MethodPatch, api.last().Method)
	assert.JSONEq(t, `{"title":"Renamed"}`, api.last().Body)

	_, _, err = executeCLI(t, home, "post", "edit", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields to change")

	stdout, _, err = executeCLI(t, home, "post", "comment", "42", "hi", "there")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Commented on post #42.")
	assert.Equal(t, "/v1/posts/42/comments", api.last().Path)
	assert.JSONEq(t, `{"content":"hi there"}`, api.last().Body)
}

func TestUserCommands(t *testing.T) {
	api := newFakeAPI(t)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "user", "followers", "me")
	require.NoError(t, err)
	assert.Contains(t, stdout, "grace (9)")
	assert.Contains(t, stdout, "linus (10)")
	assert.Contains(t, stdout, "[inactive]")
	assert.Equal(t, "/v1/users/7/followers", api.last().Path)

	stdout, _, err = executeCLI(t, home, "user", "follow", "9")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Following user 9.")
	assert.Equal(t, http.MethodPut, api.last().Method)

	_, _, err = executeCLI(t, home, "user", "follow", "404")
	require.Error(t, err)
	assert.Equal(t, "follow user 404: the requested resource could not be found", err.Error())
}

func TestUserMeRequiresLogin(t *testing.T) {
	newFakeAPI(t)

	_, _, err := executeCLI(t, t.TempDir(), "user", "show", "me")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestRegisterAndActivate(t *testing.T) {
	api := newFakeAPI(t)
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "register", "--username", " bob ", "--email", "bob@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Registered bob.")
	assert.JSONEq(t, `{"username":"bob","email":"bob@example.com","password":"pw"}`, api.last().Body)

	stdout, _, err = executeCLI(t, home, "activate", "a/b c")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Account activated.")
	assert.Equal(t, "/v1/users/activate/a%2Fb%20c", api.last().Path)
}

func TestTransportFailureMessage(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	t.Setenv("GOSOCIAL_API_ORIGIN", server.URL)

	_, _, err := executeCLI(t, t.TempDir(), "user", "show", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get user 1:")
	assert.Contains(t, err.Error(), "connection refused")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeRoot(t, newRootCmd(), home, args...)
}

func executeRoot(t *testing.T, root *cobra.Command, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
