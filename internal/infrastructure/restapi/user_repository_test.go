package restapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/internal/infrastructure/restapi"
	"github.com/oksasatya/go-clean-starter/pkg/httpclient"
	"github.com/oksasatya/go-clean-starter/pkg/pagination"
)

// fakeAPI is an in-memory stand-in for the remote users service.
type fakeAPI struct {
	mu        sync.Mutex
	users     map[string]map[string]any
	lastQuery map[string][]string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, code, msg string, details any) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": msg, "details": details},
	})
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, u := range f.users {
			if u["email"] == body["email"] {
				fail(w, http.StatusConflict, "CONFLICT", "email taken", nil)
				return
			}
		}
		if body["passwordHash"] != "hashed" {
			fail(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "password required", map[string]any{"field": "passwordHash"})
			return
		}
		delete(body, "passwordHash")
		f.users[body["id"].(string)] = body
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": body})
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		u, ok := f.users[r.PathValue("id")]
		if !ok {
			fail(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": u})
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastQuery = r.URL.Query()
		items := []map[string]any{}
		for _, u := range f.users {
			if e := r.URL.Query().Get("email"); e != "" && u["email"] != e {
				continue
			}
			items = append(items, u)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"items": items, "total": len(items), "page": 1, "limit": 10},
		})
	})
	mux.HandleFunc("PUT /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.users[r.PathValue("id")]; !ok {
			fail(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		f.users[r.PathValue("id")] = body
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": body})
	})
	mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.users[r.PathValue("id")]; !ok {
			fail(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		delete(f.users, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newClient(t *testing.T, h http.Handler) *httpclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	l := logrus.New()
	l.SetOutput(io.Discard)
	return httpclient.New(httpclient.Config{
		BaseURL:       srv.URL,
		Timeout:       time.Second,
		RetryAttempts: 1,
	}, httpclient.WithLogger(l))
}

func setup(t *testing.T) (*fakeAPI, *restapi.UserRepository) {
	api := &fakeAPI{users: map[string]map[string]any{}}
	return api, restapi.NewUserRepository(newClient(t, api.handler()))
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	_, repo := setup(t)
	ctx := context.Background()
	u, err := entity.CreateUser("jane@example.com", "Jane", "Doe")
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, u, "hashed"))

	got, err := repo.GetByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, u.Email(), got.Email())
	assert.Equal(t, u.FullName(), got.FullName())
	assert.Equal(t, u.Roles(), got.Roles())
	assert.True(t, got.CreatedAt().Equal(u.CreatedAt()))

	byEmail, err := repo.GetByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), byEmail.ID())

	exists, err := repo.ExistsByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_ErrorMapping(t *testing.T) {
	_, repo := setup(t)
	ctx := context.Background()
	u, err := entity.CreateUser("jane@example.com", "Jane", "Doe")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u, "hashed"))

	err = repo.Create(ctx, u, "hashed")
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindConflict, e.Kind)
	assert.Equal(t, errs.CodeEmailAlreadyExists, e.Code)

	other, err := entity.CreateUser("john@example.com", "John", "Doe")
	require.NoError(t, err)
	err = repo.Create(ctx, other, "")
	e, ok = errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.Equal(t, "passwordHash", e.Field)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errs.IsNotFound(err))

	_, err = repo.GetByEmail(ctx, "ghost@example.com")
	assert.True(t, errs.IsNotFound(err))
}

func TestUserRepository_UnauthorizedMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "token expired", nil)
	})
	repo := restapi.NewUserRepository(newClient(t, mux))

	_, err := repo.GetByID(context.Background(), "u1")
	assert.True(t, errs.IsUnauthorized(err))
}

func TestUserRepository_ServerErrorIsNotDomainError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	repo := restapi.NewUserRepository(newClient(t, mux))

	_, err := repo.GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, errs.Kind(""), errs.KindOf(err))
	he, ok := httpclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "HTTP_500", he.Code)
}

func TestUserRepository_ListSendsQuery(t *testing.T) {
	api, repo := setup(t)
	ctx := context.Background()
	u, err := entity.CreateUser("jane@example.com", "Jane", "Doe")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u, "hashed"))

	active := true
	users, total, err := repo.List(ctx, repository.UserQuery{
		Filter:    repository.UserFilter{Search: "ja", IsActive: &active, Role: entity.RoleUser, IDs: []string{"a", "b"}},
		Page:      pagination.Params{Page: 2, Limit: 5},
		SortBy:    "email",
		SortOrder: repository.SortAsc,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	q := api.lastQuery
	assert.Equal(t, []string{"2"}, q["page"])
	assert.Equal(t, []string{"5"}, q["limit"])
	assert.Equal(t, []string{"ja"}, q["search"])
	assert.Equal(t, []string{"true"}, q["isActive"])
	assert.Equal(t, []string{"user"}, q["role"])
	assert.Equal(t, []string{"a,b"}, q["ids"])
	assert.Equal(t, []string{"email"}, q["sortBy"])
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	_, repo := setup(t)
	ctx := context.Background()
	u, err := entity.CreateUser("jane@example.com", "Jane", "Doe")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u, "hashed"))

	name := "Janet"
	updated, err := u.Update(entity.UserUpdate{FirstName: &name})
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, updated))

	got, err := repo.GetByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.FirstName())

	require.NoError(t, repo.Delete(ctx, u.ID()))
	assert.True(t, errs.IsNotFound(repo.Delete(ctx, u.ID())))
}

func TestUserRepository_InvalidRemotePayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"id": "u1", "email": "broken", "firstName": "A", "lastName": "B", "createdAt": time.Now(),
		}})
	})
	repo := restapi.NewUserRepository(newClient(t, mux))

	_, err := repo.GetByID(context.Background(), "u1")
	assert.True(t, errs.IsValidation(err))
}
