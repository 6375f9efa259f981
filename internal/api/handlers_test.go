// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/serializer"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "correct-horse"
)

// testEnv is a full router over an in-memory database with one viewer and
// one staff account.
type testEnv struct {
	router      http.Handler
	handler     *Handler
	authn       *auth.Middleware
	db          *database.DB
	cfg         *config.Config
	viewerToken string
	staffToken  string
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BasePath:     "/api/v1",
			MaxBodyBytes: 1 << 20,
		},
		Security: config.SecurityConfig{
			AuthMode:          "multi",
			JWTSecret:         testSecret,
			SessionTimeout:    time.Hour,
			RateLimitDisabled: true,
		},
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	db, err := database.New(&config.DatabaseConfig{
		Path:         ":memory:",
		MaxMemory:    "512MB",
		Threads:      2,
		MaxTxRetries: 10,
	}, nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	viewer := createTestUser(t, db, "viewer", false)
	staff := createTestUser(t, db, "staff", true)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	authenticator, err := auth.NewAuthenticator(auth.AuthModeMulti, jwtManager, db.Users())
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	catalog := NewCatalog(db)

	authorizer := authz.NewMiddleware(nil, cfg.API.BasePath)
	if cfg.Security.Casbin.Enabled {
		enforcer, err := authz.NewEnforcer(&cfg.Security.Casbin)
		if err != nil {
			t.Fatalf("NewEnforcer: %v", err)
		}
		t.Cleanup(enforcer.Close)
		authorizer = authz.NewMiddleware(enforcer, cfg.API.BasePath)
	}

	handler := NewHandler(catalog, db.Users(), jwtManager, db, cfg)
	authn := auth.NewMiddleware(authenticator)
	router := NewRouter(handler, authn, authorizer, nil, cfg)

	return &testEnv{
		router:      router.Setup(),
		handler:     handler,
		authn:       authn,
		db:          db,
		cfg:         cfg,
		viewerToken: mustToken(t, jwtManager, viewer),
		staffToken:  mustToken(t, jwtManager, staff),
	}
}

func createTestUser(t *testing.T, db *database.DB, username string, staff bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &models.User{Username: username, PasswordHash: string(hash), IsStaff: staff}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func mustToken(t *testing.T, m *auth.JWTManager, user *models.User) string {
	t.Helper()
	token, _, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

// do sends a request with an optional bearer token and JSON body.
func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// createMovie posts body as staff and returns the created movie.
func (e *testEnv) createMovie(t *testing.T, body string) serializer.MovieWire {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/movies/", e.staffToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create movie: status %d, body %s", rec.Code, rec.Body.String())
	}
	var movie serializer.MovieWire
	decodeBody(t, rec, &movie)
	return movie
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assertStatus(t, rec, status)
	var resp models.ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Success || resp.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if resp.Error.Code != code {
		t.Errorf("error code = %q, want %q", resp.Error.Code, code)
	}
	if resp.Error.RequestID == "" {
		t.Error("expected request_id in error envelope")
	}
}

const inceptionJSON = `{"name":"Inception","score":"8.80","popularity":"88.00",
	"director":{"name":"Christopher Nolan"},"genre":["Sci-Fi","Thriller"]}`

func TestAPI_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/", "/api/v1/movies/", "/api/v1/directors/", "/api/v1/genres/1/"} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, "", "")
			assertErrorCode(t, rec, http.StatusUnauthorized, models.CodeUnauthorized)

			challenges := strings.Join(rec.Header().Values("WWW-Authenticate"), ",")
			if !strings.Contains(challenges, "Bearer") || !strings.Contains(challenges, "Basic") {
				t.Errorf("WWW-Authenticate = %q, want Bearer and Basic challenges", challenges)
			}
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/movies/", "not-a-token", "")
	assertErrorCode(t, rec, http.StatusUnauthorized, models.CodeUnauthorized)
}

func TestAPI_AccessPolicy(t *testing.T) {
	env := newTestEnv(t)
	movie := env.createMovie(t, inceptionJSON)
	moviePath := "/api/v1/movies/" + formatID(movie.ID) + "/"

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"viewer lists", http.MethodGet, "/api/v1/movies/", env.viewerToken, "", http.StatusOK},
		{"viewer reads", http.MethodGet, moviePath, env.viewerToken, "", http.StatusOK},
		{"viewer cannot create", http.MethodPost, "/api/v1/movies/", env.viewerToken, inceptionJSON, http.StatusForbidden},
		{"viewer cannot patch", http.MethodPatch, moviePath, env.viewerToken, `{"name":"x"}`, http.StatusForbidden},
		{"viewer cannot delete", http.MethodDelete, moviePath, env.viewerToken, "", http.StatusForbidden},
		{"viewer cannot delete director", http.MethodDelete, "/api/v1/directors/1/", env.viewerToken, "", http.StatusForbidden},
		{"staff patches", http.MethodPatch, moviePath, env.staffToken, `{"popularity":"90"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.token, tt.body)
			assertStatus(t, rec, tt.want)
			if tt.want == http.StatusForbidden {
				assertErrorCode(t, rec, http.StatusForbidden, models.CodeForbidden)
			}
		})
	}
}

func TestAPI_BasicAuthentication(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies/", strings.NewReader(inceptionJSON))
	req.SetBasicAuth("staff", testPassword)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusCreated)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/movies/", nil)
	req.SetBasicAuth("staff", "wrong-password")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assertErrorCode(t, rec, http.StatusUnauthorized, models.CodeUnauthorized)
}

func TestAPI_MovieLifecycle(t *testing.T) {
	env := newTestEnv(t)

	created := env.createMovie(t, inceptionJSON)
	if created.ID == 0 {
		t.Fatal("expected an id")
	}
	if created.Score.String() != "8.80" || created.Popularity.String() != "88.00" {
		t.Errorf("decimals = %s/%s, want 8.80/88.00", created.Score, created.Popularity)
	}
	if created.Director.Name != "Christopher Nolan" {
		t.Errorf("director = %q", created.Director.Name)
	}
	if strings.Join(created.Genre, ",") != "Sci-Fi,Thriller" {
		t.Errorf("genre = %v", created.Genre)
	}

	path := "/api/v1/movies/" + formatID(created.ID) + "/"

	t.Run("get", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, path, env.viewerToken, "")
		assertStatus(t, rec, http.StatusOK)
		var got serializer.MovieWire
		decodeBody(t, rec, &got)
		if got.Name != "Inception" {
			t.Errorf("name = %q", got.Name)
		}
	})

	t.Run("patch keeps omitted fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, path, env.staffToken, `{"score":9.1}`)
		assertStatus(t, rec, http.StatusOK)
		var got serializer.MovieWire
		decodeBody(t, rec, &got)
		if got.Score.String() != "9.10" {
			t.Errorf("score = %s, want 9.10", got.Score)
		}
		if got.Name != "Inception" || got.Director.Name != "Christopher Nolan" {
			t.Errorf("patch changed untouched fields: %+v", got)
		}
	})

	t.Run("put merges genres and re-points director", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, path, env.staffToken,
			`{"name":"Inception","score":"8.80","popularity":"88","director":{"name":"Emma Thomas"},"genre":["Drama"]}`)
		assertStatus(t, rec, http.StatusOK)
		var got serializer.MovieWire
		decodeBody(t, rec, &got)
		if got.Director.Name != "Emma Thomas" {
			t.Errorf("director = %q, want Emma Thomas", got.Director.Name)
		}
		if strings.Join(got.Genre, ",") != "Sci-Fi,Thriller,Drama" {
			t.Errorf("genre = %v, want existing genres plus Drama", got.Genre)
		}
	})

	t.Run("put requires every field", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, path, env.staffToken, `{"name":"Inception"}`)
		assertErrorCode(t, rec, http.StatusBadRequest, models.CodeValidation)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, path, env.staffToken, "")
		assertStatus(t, rec, http.StatusNoContent)
		if rec.Body.Len() != 0 {
			t.Errorf("expected empty body, got %q", rec.Body.String())
		}

		rec = env.do(t, http.MethodGet, path, env.viewerToken, "")
		assertErrorCode(t, rec, http.StatusNotFound, models.CodeNotFound)

		rec = env.do(t, http.MethodDelete, path, env.staffToken, "")
		assertErrorCode(t, rec, http.StatusNotFound, models.CodeNotFound)
	})
}

func TestAPI_CreateSetsLocation(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/movies/", env.staffToken, inceptionJSON)
	assertStatus(t, rec, http.StatusCreated)

	var movie serializer.MovieWire
	decodeBody(t, rec, &movie)
	want := "/api/v1/movies/" + formatID(movie.ID) + "/"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestAPI_MovieValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"missing director", `{"name":"Alien","score":"8.5","popularity":"85"}`},
		{"blank name", `{"name":"  ","score":"8.5","popularity":"85","director":{"name":"Ridley Scott"}}`},
		{"too many decimal places", `{"name":"Alien","score":"8.505","popularity":"85","director":{"name":"Ridley Scott"}}`},
		{"score too large", `{"name":"Alien","score":"1000","popularity":"85","director":{"name":"Ridley Scott"}}`},
		{"blank genre", `{"name":"Alien","score":"8.5","popularity":"85","director":{"name":"Ridley Scott"},"genre":[""]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/movies/", env.staffToken, tt.body)
			assertErrorCode(t, rec, http.StatusBadRequest, models.CodeValidation)
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/movies/", env.viewerToken, "")
	var movies []serializer.MovieWire
	decodeBody(t, rec, &movies)
	if len(movies) != 0 {
		t.Errorf("invalid requests created %d movies", len(movies))
	}
}

func TestAPI_UpdateMissingMovie(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		body   string
	}{
		{http.MethodPut, `{"name":""}`},
		{http.MethodPatch, `{"score":"1000"}`},
		{http.MethodPut, inceptionJSON},
	}
	for _, tt := range tests {
		rec := env.do(t, tt.method, "/api/v1/movies/999/", env.staffToken, tt.body)
		assertErrorCode(t, rec, http.StatusNotFound, models.CodeNotFound)
	}
}

func TestAPI_GenresKeepSubmittedOrder(t *testing.T) {
	env := newTestEnv(t)

	env.createMovie(t, `{"name":"Memento","score":"8.40","popularity":"70",
		"director":{"name":"Christopher Nolan"},"genre":["Thriller"]}`)
	movie := env.createMovie(t, inceptionJSON)
	if got := strings.Join(movie.Genre, ","); got != "Sci-Fi,Thriller" {
		t.Errorf("created genre = %s, want Sci-Fi,Thriller", got)
	}

	path := "/api/v1/movies/" + formatID(movie.ID) + "/"
	rec := env.do(t, http.MethodPatch, path, env.staffToken, `{"genre":["Drama","Sci-Fi"]}`)
	assertStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, path, env.viewerToken, "")
	assertStatus(t, rec, http.StatusOK)
	var got serializer.MovieWire
	decodeBody(t, rec, &got)
	if strings.Join(got.Genre, ",") != "Sci-Fi,Thriller,Drama" {
		t.Errorf("genre = %v, want Sci-Fi,Thriller,Drama", got.Genre)
	}
}

func TestAPI_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.API.MaxBodyBytes = 32 })
	rec := env.do(t, http.MethodPost, "/api/v1/movies/", env.staffToken, inceptionJSON)
	assertErrorCode(t, rec, http.StatusRequestEntityTooLarge, models.CodeRequestTooLarge)
}

func TestAPI_SearchAndOrdering(t *testing.T) {
	env := newTestEnv(t)
	env.createMovie(t, inceptionJSON)
	env.createMovie(t, `{"name":"Alien","score":"8.50","popularity":"85","director":{"name":"Ridley Scott"},"genre":["Horror","Sci-Fi"]}`)
	env.createMovie(t, `{"name":"Memento","score":"8.40","popularity":"80","director":{"name":"Christopher Nolan"},"genre":["Thriller"]}`)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Inception", "Alien", "Memento"}},
		{"?ordering=name", []string{"Alien", "Inception", "Memento"}},
		{"?ordering=-name", []string{"Memento", "Inception", "Alien"}},
		{"?ordering=popularity", []string{"Inception", "Alien", "Memento"}},
		{"?search=nolan", []string{"Inception", "Memento"}},
		{"?search=sci-fi", []string{"Inception", "Alien"}},
		{"?search=nolan,thriller&ordering=-name", []string{"Memento", "Inception"}},
		{"?search=8.50", []string{"Alien"}},
		{"?search=western", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/movies/"+tt.query, env.viewerToken, "")
			assertStatus(t, rec, http.StatusOK)
			var movies []serializer.MovieWire
			decodeBody(t, rec, &movies)
			names := make([]string, len(movies))
			for i, m := range movies {
				names[i] = m.Name
			}
			if strings.Join(names, ",") != strings.Join(tt.want, ",") {
				t.Errorf("names = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestAPI_DirectorsAndGenres(t *testing.T) {
	env := newTestEnv(t)
	inception := env.createMovie(t, inceptionJSON)
	env.createMovie(t, `{"name":"Memento","score":"8.40","popularity":"80","director":{"name":"Christopher Nolan"},"genre":["Thriller"]}`)
	alien := env.createMovie(t, `{"name":"Alien","score":"8.50","popularity":"85","director":{"name":"Ridley Scott"},"genre":["Sci-Fi"]}`)

	rec := env.do(t, http.MethodGet, "/api/v1/directors/", env.viewerToken, "")
	assertStatus(t, rec, http.StatusOK)
	var directors []models.Director
	decodeBody(t, rec, &directors)
	if len(directors) != 2 {
		t.Fatalf("directors = %+v, want 2 deduplicated by name", directors)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/genres/", env.viewerToken, "")
	var genres []models.Genre
	decodeBody(t, rec, &genres)
	if len(genres) != 2 {
		t.Fatalf("genres = %+v, want Sci-Fi and Thriller", genres)
	}

	var sciFi models.Genre
	for _, g := range genres {
		if g.Name == "Sci-Fi" {
			sciFi = g
		}
	}
	rec = env.do(t, http.MethodGet, "/api/v1/genres/"+formatID(sciFi.ID)+"/", env.viewerToken, "")
	assertStatus(t, rec, http.StatusOK)

	t.Run("deleting a genre detaches it", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/genres/"+formatID(sciFi.ID)+"/", env.staffToken, "")
		assertStatus(t, rec, http.StatusNoContent)

		rec = env.do(t, http.MethodGet, "/api/v1/movies/"+formatID(alien.ID)+"/", env.viewerToken, "")
		assertStatus(t, rec, http.StatusOK)
		var movie serializer.MovieWire
		decodeBody(t, rec, &movie)
		if len(movie.Genre) != 0 {
			t.Errorf("genre = %v, want []", movie.Genre)
		}
	})

	t.Run("deleting a director deletes its movies", func(t *testing.T) {
		var nolanID int64
		for _, d := range directors {
			if d.Name == "Christopher Nolan" {
				nolanID = d.ID
			}
		}
		rec := env.do(t, http.MethodDelete, "/api/v1/directors/"+formatID(nolanID)+"/", env.staffToken, "")
		assertStatus(t, rec, http.StatusNoContent)

		rec = env.do(t, http.MethodGet, "/api/v1/movies/"+formatID(inception.ID)+"/", env.viewerToken, "")
		assertErrorCode(t, rec, http.StatusNotFound, models.CodeNotFound)

		rec = env.do(t, http.MethodGet, "/api/v1/movies/", env.viewerToken, "")
		var movies []serializer.MovieWire
		decodeBody(t, rec, &movies)
		if len(movies) != 1 || movies[0].Name != "Alien" {
			t.Errorf("movies = %+v, want only Alien", movies)
		}
	})

	rec = env.do(t, http.MethodGet, "/api/v1/directors/999/", env.viewerToken, "")
	assertErrorCode(t, rec, http.StatusNotFound, models.CodeNotFound)
}

func TestAPI_Root(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/", nil)
	req.Host = "movies.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("Authorization", "Bearer "+env.viewerToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusOK)

	var root map[string]string
	decodeBody(t, rec, &root)
	want := map[string]string{
		"movies":    "https://movies.example.com/api/v1/movies/",
		"directors": "https://movies.example.com/api/v1/directors/",
		"genres":    "https://movies.example.com/api/v1/genres/",
	}
	for key, url := range want {
		if root[key] != url {
			t.Errorf("root[%q] = %q, want %q", key, root[key], url)
		}
	}
}

func TestAPI_Routing(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   string
	}{
		{"unknown route", http.MethodGet, "/api/v1/actors/", http.StatusNotFound, models.CodeNotFound},
		{"non-numeric id", http.MethodGet, "/api/v1/movies/abc/", http.StatusNotFound, models.CodeNotFound},
		{"zero id", http.MethodGet, "/api/v1/movies/0/", http.StatusNotFound, models.CodeNotFound},
		{"method not allowed", http.MethodDelete, "/api/v1/movies/", http.StatusMethodNotAllowed, models.CodeMethodNotAllowed},
		{"no director create", http.MethodPost, "/api/v1/directors/", http.StatusMethodNotAllowed, models.CodeMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, env.staffToken, "")
			assertErrorCode(t, rec, tt.status, tt.code)
		})
	}

	for _, path := range []string{"/api/v1/movies", "/api/v1/movies/"} {
		rec := env.do(t, http.MethodGet, path, env.viewerToken, "")
		assertStatus(t, rec, http.StatusOK)
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("GET %s body = %q, want []", path, rec.Body.String())
		}
	}
}

func TestAPI_SafeMethods(t *testing.T) {
	env := newTestEnv(t)
	movie := env.createMovie(t, inceptionJSON)
	moviePath := "/api/v1/movies/" + formatID(movie.ID) + "/"

	t.Run("head", func(t *testing.T) {
		for _, path := range []string{"/api/v1/", "/api/v1/movies/", moviePath, "/api/v1/genres"} {
			rec := env.do(t, http.MethodHead, path, env.viewerToken, "")
			assertStatus(t, rec, http.StatusOK)
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("HEAD %s Content-Type = %q", path, ct)
			}
		}
		rec := env.do(t, http.MethodHead, "/api/v1/movies/999/", env.viewerToken, "")
		assertStatus(t, rec, http.StatusNotFound)
	})

	t.Run("options", func(t *testing.T) {
		tests := []struct {
			path string
			want string
		}{
			{"/api/v1/", "GET, HEAD, OPTIONS"},
			{"/api/v1/movies/", "GET, POST, HEAD, OPTIONS"},
			{moviePath, "GET, PUT, PATCH, DELETE, HEAD, OPTIONS"},
			{"/api/v1/directors/1", "GET, DELETE, HEAD, OPTIONS"},
			{"/api/v1/genres", "GET, HEAD, OPTIONS"},
		}
		for _, tt := range tests {
			rec := env.do(t, http.MethodOptions, tt.path, env.viewerToken, "")
			assertStatus(t, rec, http.StatusOK)
			if got := rec.Header().Get("Allow"); got != tt.want {
				t.Errorf("OPTIONS %s Allow = %q, want %q", tt.path, got, tt.want)
			}
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := env.do(t, http.MethodOptions, "/api/v1/movies/", "", "")
		assertErrorCode(t, rec, http.StatusUnauthorized, models.CodeUnauthorized)
		rec = env.do(t, http.MethodHead, "/api/v1/movies/", "", "")
		assertStatus(t, rec, http.StatusUnauthorized)
	})
}

func TestAPI_CasbinUnderCustomBasePath(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.API.BasePath = "/catalog/"
		c.Security.Casbin = config.CasbinConfig{Enabled: true, DefaultRole: models.RoleViewer}
	})

	rec := env.do(t, http.MethodPost, "/catalog/movies/", env.staffToken, inceptionJSON)
	assertStatus(t, rec, http.StatusCreated)
	var movie serializer.MovieWire
	decodeBody(t, rec, &movie)
	moviePath := "/catalog/movies/" + formatID(movie.ID) + "/"

	rec = env.do(t, http.MethodGet, "/catalog", env.viewerToken, "")
	assertStatus(t, rec, http.StatusOK)
	rec = env.do(t, http.MethodGet, moviePath, env.viewerToken, "")
	assertStatus(t, rec, http.StatusOK)
	rec = env.do(t, http.MethodDelete, moviePath, env.viewerToken, "")
	assertErrorCode(t, rec, http.StatusForbidden, models.CodeForbidden)
	rec = env.do(t, http.MethodDelete, moviePath, env.staffToken, "")
	assertStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, "/api/v1/movies/", env.viewerToken, "")
	assertStatus(t, rec, http.StatusNotFound)
}

func TestAPI_SecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/movies/", env.viewerToken, "")

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}
