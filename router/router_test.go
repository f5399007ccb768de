package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"playlister/db"
	"playlister/models"
)

type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	playlists map[int64]models.Playlist
	songs     map[int64]models.Song

	lastSongQuery db.SongQuery
	pingErr       error
	listErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		playlists: map[int64]models.Playlist{},
		songs:     map[int64]models.Song{},
	}
}

func (f *fakeStore) songsOf(playlistID int64) []models.Song {
	out := []models.Song{}
	for id := int64(1); id <= f.nextID; id++ {
		if s, ok := f.songs[id]; ok && s.PlaylistID == playlistID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeStore) ListPlaylists(context.Context) ([]models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Playlist{}
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.playlists[id]; ok {
			p.Songs = f.songsOf(id)
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPlaylist(_ context.Context, id int64) (models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.playlists[id]
	if !ok {
		return p, db.ErrNotFound
	}
	p.Songs = f.songsOf(id)
	return p, nil
}

func (f *fakeStore) CreatePlaylist(_ context.Context, p *models.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	p.Songs = []models.Song{}
	f.playlists[p.ID] = *p
	return nil
}

func (f *fakeStore) UpdatePlaylist(_ context.Context, p *models.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	old, ok := f.playlists[p.ID]
	if !ok {
		return db.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	f.playlists[p.ID] = *p
	return nil
}

func (f *fakeStore) DeletePlaylist(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.playlists[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.playlists, id)
	for sid, s := range f.songs {
		if s.PlaylistID == id {
			delete(f.songs, sid)
		}
	}
	return nil
}

func (f *fakeStore) PlaylistExists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.playlists[id]
	return ok, nil
}

// ListSongs sadece playlist filtresini uygular; arama ve sıralama SQL tarafında test edilir.
func (f *fakeStore) ListSongs(_ context.Context, q db.SongQuery) ([]models.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastSongQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := []models.Song{}
	for id := int64(1); id <= f.nextID; id++ {
		s, ok := f.songs[id]
		if !ok || (q.PlaylistID != nil && s.PlaylistID != *q.PlaylistID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) GetSong(_ context.Context, id int64) (models.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.songs[id]
	if !ok {
		return s, db.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) CreateSong(_ context.Context, s *models.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.playlists[s.PlaylistID]; !ok {
		return db.ErrPlaylistNotFound
	}
	f.nextID++
	s.ID = f.nextID
	f.songs[s.ID] = *s
	return nil
}

func (f *fakeStore) UpdateSong(_ context.Context, s *models.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.songs[s.ID]; !ok {
		return db.ErrNotFound
	}
	if _, ok := f.playlists[s.PlaylistID]; !ok {
		return db.ErrPlaylistNotFound
	}
	f.songs[s.ID] = *s
	return nil
}

func (f *fakeStore) DeleteSong(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.songs[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.songs, id)
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Close() {}

type apiResponse struct {
	status int
	body   []byte
}

func (r apiResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.body, v); err != nil {
		t.Fatalf("failed to decode %q: %v", r.body, err)
	}
}

func do(t *testing.T, store *fakeStore, method, path, body string) apiResponse {
	t.Helper()

	app := New(Options{Store: store})

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return apiResponse{status: resp.StatusCode, body: data}
}

const bohemianRhapsody = `{"playlist":1,"title":"Bohemian Rhapsody","artist":"Queen","album":"A Night at the Opera","duration":"5:55","genre":"rock"}`

func TestCreatePlaylistAddSongFlow(t *testing.T) {
	store := newFakeStore()

	resp := do(t, store, http.MethodPost, "/api/playlists/", `{"name":"Road Trip","description":"","thumbnail":""}`)
	if resp.status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.status, resp.body)
	}
	if !strings.Contains(string(resp.body), `"songs":[]`) {
		t.Fatalf("expected empty songs array, got %s", resp.body)
	}

	resp = do(t, store, http.MethodPost, "/api/songs/", bohemianRhapsody)
	if resp.status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.status, resp.body)
	}

	resp = do(t, store, http.MethodGet, "/api/playlists/1/", "")
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.status, resp.body)
	}
	var playlist models.Playlist
	resp.decode(t, &playlist)
	if playlist.Name != "Road Trip" || len(playlist.Songs) != 1 {
		t.Fatalf("unexpected playlist: %+v", playlist)
	}
	if playlist.Songs[0].Title != "Bohemian Rhapsody" || playlist.Songs[0].PlaylistID != 1 {
		t.Fatalf("unexpected nested song: %+v", playlist.Songs[0])
	}
}

func TestCreatePlaylistIgnoresSongs(t *testing.T) {
	store := newFakeStore()

	resp := do(t, store, http.MethodPost, "/api/playlists", `{"name":"x","songs":[{"title":"smuggled"}]}`)
	if resp.status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.status, resp.body)
	}
	var playlist models.Playlist
	resp.decode(t, &playlist)
	if len(playlist.Songs) != 0 {
		t.Fatalf("songs must be read-only, got %+v", playlist.Songs)
	}
}

func TestCreatePlaylistValidation(t *testing.T) {
	store := newFakeStore()

	resp := do(t, store, http.MethodPost, "/api/playlists/", `{"description":"no name"}`)
	if resp.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.status, resp.body)
	}

	var body struct {
		Fields map[string][]string `json:"fields"`
	}
	resp.decode(t, &body)
	if len(body.Fields["name"]) == 0 {
		t.Fatalf("expected name field error, got %s", resp.body)
	}
	if len(store.playlists) != 0 {
		t.Fatalf("expected nothing persisted, got %d playlists", len(store.playlists))
	}
}

func TestCreatePlaylistMalformedBody(t *testing.T) {
	resp := do(t, newFakeStore(), http.MethodPost, "/api/playlists/", `{"name":`)
	if resp.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.status, resp.body)
	}
}

func TestCreateSongUnknownPlaylist(t *testing.T) {
	store := newFakeStore()

	resp := do(t, store, http.MethodPost, "/api/songs/", bohemianRhapsody)
	if resp.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.status, resp.body)
	}

	var body struct {
		Fields map[string][]string `json:"fields"`
	}
	resp.decode(t, &body)
	if len(body.Fields["playlist"]) == 0 {
		t.Fatalf("expected playlist field error, got %s", resp.body)
	}
	if len(store.songs) != 0 {
		t.Fatalf("expected nothing persisted, got %d songs", len(store.songs))
	}
}

func TestDeletePlaylistCascades(t *testing.T) {
	store := newFakeStore()

	do(t, store, http.MethodPost, "/api/playlists/", `{"name":"Road Trip"}`)
	for i := 0; i < 3; i++ {
		if resp := do(t, store, http.MethodPost, "/api/songs/", bohemianRhapsody); resp.status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", resp.status, resp.body)
		}
	}

	resp := do(t, store, http.MethodDelete, "/api/playlists/1/", "")
	if resp.status != http.StatusNoContent || len(resp.body) != 0 {
		t.Fatalf("expected empty 204, got %d: %s", resp.status, resp.body)
	}

	for _, path := range []string{"/api/songs/2/", "/api/songs/3/", "/api/songs/4/", "/api/playlists/1/"} {
		if resp := do(t, store, http.MethodGet, path, ""); resp.status != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", path, resp.status)
		}
	}
}

func TestUpdatePlaylistPutAndPatch(t *testing.T) {
	store := newFakeStore()
	do(t, store, http.MethodPost, "/api/playlists/", `{"name":"Road Trip","description":"summer","thumbnail":"https://example.com/a.png"}`)

	resp := do(t, store, http.MethodPatch, "/api/playlists/1/", `{"name":"Night Drive"}`)
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.status, resp.body)
	}
	var patched models.Playlist
	resp.decode(t, &patched)
	if patched.Name != "Night Drive" || patched.Description != "summer" {
		t.Fatalf("unexpected playlist after patch: %+v", patched)
	}

	resp = do(t, store, http.MethodPut, "/api/playlists/1/", `{"name":"Road Trip II","description":"Updated description"}`)
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.status, resp.body)
	}
	var put models.Playlist
	resp.decode(t, &put)
	if put.Name != "Road Trip II" || put.Description != "Updated description" || put.Thumbnail != "https://example.com/a.png" {
		t.Fatalf("unexpected playlist after put: %+v", put)
	}
	if !put.CreatedAt.Equal(patched.CreatedAt) {
		t.Fatalf("created_at changed: %s -> %s", patched.CreatedAt, put.CreatedAt)
	}

	resp = do(t, store, http.MethodPut, "/api/playlists/1/", `{"description":"missing name"}`)
	if resp.status != http.StatusBadRequest {
		t.Fatalf("expected 400 for put without name, got %d", resp.status)
	}
}

func TestUpdateSongMovesPlaylist(t *testing.T) {
	store := newFakeStore()
	do(t, store, http.MethodPost, "/api/playlists/", `{"name":"a"}`)
	do(t, store, http.MethodPost, "/api/songs/", bohemianRhapsody)

	resp := do(t, store, http.MethodPatch, "/api/songs/2/", `{"playlist":42}`)
	if resp.status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown playlist, got %d: %s", resp.status, resp.body)
	}

	do(t, store, http.MethodPost, "/api/playlists/", `{"name":"b"}`)
	resp = do(t, store, http.MethodPatch, "/api/songs/2/", `{"playlist":3,"order":5}`)
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.status, resp.body)
	}
	var song models.Song
	resp.decode(t, &song)
	if song.PlaylistID != 3 || song.Order != 5 || song.Title != "Bohemian Rhapsody" {
		t.Fatalf("unexpected song: %+v", song)
	}
}

func TestListSongsQueryParams(t *testing.T) {
	store := newFakeStore()
	do(t, store, http.MethodPost, "/api/playlists/", `{"name":"Road Trip"}`)

	resp := do(t, store, http.MethodGet, "/api/songs/?playlist=1&search=queen&ordering=-title,bogus", "")
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.status, resp.body)
	}
	if strings.TrimSpace(string(resp.body)) != "[]" {
		t.Fatalf("expected empty array, got %s", resp.body)
	}

	q := store.lastSongQuery
	if q.PlaylistID == nil || *q.PlaylistID != 1 {
		t.Fatalf("expected playlist filter 1, got %v", q.PlaylistID)
	}
	if q.Search != "queen" {
		t.Fatalf("expected search queen, got %q", q.Search)
	}
	if len(q.Ordering) != 1 || q.Ordering[0] != (db.OrderTerm{Field: "title", Desc: true}) {
		t.Fatalf("unexpected ordering: %+v", q.Ordering)
	}
}

func TestListSongsDefaultOrdering(t *testing.T) {
	store := newFakeStore()

	do(t, store, http.MethodGet, "/api/songs/", "")
	if got := store.lastSongQuery.Ordering; len(got) != 2 || got[0].Field != "order" || got[1].Field != "title" {
		t.Fatalf("unexpected default ordering: %+v", got)
	}
}

func TestListSongsInvalidPlaylistFilter(t *testing.T) {
	resp := do(t, newFakeStore(), http.MethodGet, "/api/songs/?playlist=abc", "")
	if resp.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.status, resp.body)
	}
}

func TestListSongsUnknownPlaylistFilter(t *testing.T) {
	store := newFakeStore()

	resp := do(t, store, http.MethodGet, "/api/songs/?playlist=42", "")
	if resp.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.status, resp.body)
	}

	var body struct {
		Fields map[string][]string `json:"fields"`
	}
	resp.decode(t, &body)
	if len(body.Fields["playlist"]) == 0 {
		t.Fatalf("expected playlist field error, got %s", resp.body)
	}
}

func TestSongWriteRejectsOutOfRangeInput(t *testing.T) {
	store := newFakeStore()
	do(t, store, http.MethodPost, "/api/playlists/", `{"name":"Road Trip"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		field  string
	}{
		{
			name:   "order overflows integer column",
			method: http.MethodPost,
			path:   "/api/songs/",
			body:   `{"playlist":1,"title":"t","artist":"a","duration":"1:00","genre":"g","order":3000000000}`,
			field:  "order",
		},
		{
			name:   "nul in title",
			method: http.MethodPost,
			path:   "/api/songs/",
			body:   `{"playlist":1,"title":"a\u0000b","artist":"a","duration":"1:00","genre":"g"}`,
			field:  "title",
		},
		{
			name:   "nul in playlist name",
			method: http.MethodPost,
			path:   "/api/playlists/",
			body:   `{"name":"\u0000"}`,
			field:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, store, tt.method, tt.path, tt.body)
			if resp.status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.status, resp.body)
			}

			var body struct {
				Fields map[string][]string `json:"fields"`
			}
			resp.decode(t, &body)
			if len(body.Fields[tt.field]) == 0 {
				t.Fatalf("expected %s field error, got %s", tt.field, resp.body)
			}
		})
	}

	if len(store.songs) != 0 || len(store.playlists) != 1 {
		t.Fatalf("expected nothing persisted, got %d songs %d playlists", len(store.songs), len(store.playlists))
	}
}

func TestListSongsStripsNulFromSearch(t *testing.T) {
	store := newFakeStore()

	resp := do(t, store, http.MethodGet, "/api/songs/?search=que%00en", "")
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.status, resp.body)
	}

	_, args := db.BuildSongQuery(store.lastSongQuery)
	for _, arg := range args {
		if s, ok := arg.(string); ok && strings.ContainsRune(s, 0) {
			t.Fatalf("nul character reached query args: %q", s)
		}
	}
}

func TestListSongsStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection reset")

	resp := do(t, store, http.MethodGet, "/api/songs/", "")
	if resp.status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", resp.status, resp.body)
	}
}

func TestInvalidAndUnknownIDs(t *testing.T) {
	store := newFakeStore()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/playlists/abc/", http.StatusBadRequest},
		{http.MethodGet, "/api/playlists/9/", http.StatusNotFound},
		{http.MethodDelete, "/api/songs/9/", http.StatusNotFound},
		{http.MethodGet, "/api/albums/", http.StatusNotFound},
	}
	for _, tt := range tests {
		if resp := do(t, store, tt.method, tt.path, ""); resp.status != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, resp.status)
		}
	}
}

func TestHealth(t *testing.T) {
	store := newFakeStore()
	if resp := do(t, store, http.MethodGet, "/healthz", ""); resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.status)
	}

	store.pingErr = errors.New("down")
	if resp := do(t, store, http.MethodGet, "/healthz", ""); resp.status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.status)
	}
}

func TestRoutesTable(t *testing.T) {
	routes := Routes(newFakeStore(), nil)
	if len(routes) != 12 {
		t.Fatalf("expected 12 routes, got %d", len(routes))
	}

	seen := map[string]bool{}
	for _, r := range routes {
		seen[r.Method+" "+r.Path] = true
	}
	for _, key := range []string{"GET /playlists", "POST /songs", "PATCH /songs/:id", "DELETE /playlists/:id"} {
		if !seen[key] {
			t.Errorf("missing route %s", key)
		}
	}
}

func TestRateLimit(t *testing.T) {
	app := New(Options{Store: newFakeStore(), RateLimitMax: 1, RateLimitWindow: time.Minute})

	first, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/playlists/", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.StatusCode)
	}

	second, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/playlists/", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.StatusCode)
	}
}
