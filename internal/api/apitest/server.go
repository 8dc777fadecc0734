// Package apitest provides an in-process fake of the diary exchange service.
package apitest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/pkg/json"
)

// Route names used by Calls and FailWith.
const (
	RouteInitUser      = "POST /api/users/init"
	RouteCreateDiary   = "POST /api/diaries"
	RouteToday         = "GET /api/diaries/today"
	RouteSave          = "POST /api/diaries/save"
	RouteSaved         = "GET /api/diaries/saved"
	RouteMine          = "GET /api/diaries/my"
	RouteNotifications = "GET /api/users/notifications"
)

type failure struct {
	status int
	detail string
}

type savedRecord struct {
	diaryID string
	at      time.Time
}

// Server is a stateful fake. Entries are distributed one per today call to
// users other than their author, never twice to the same user. Saves are
// limited to one per user per UTC day.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	now         func() time.Time
	nextUser    int
	nextDiary   int
	order       []string
	diaries     map[string]*models.Diary
	authors     map[string]string
	delivered   map[string]map[string]bool
	saved       map[string][]savedRecord
	notified    map[string]bool
	queued      [][]models.Diary
	failures    map[string]failure
	calls       map[string]int
	requestIDs  []string
	lastPayload map[string]string
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		now:         time.Now,
		diaries:     map[string]*models.Diary{},
		authors:     map[string]string{},
		delivered:   map[string]map[string]bool{},
		saved:       map[string][]savedRecord{},
		notified:    map[string]bool{},
		failures:    map[string]failure{},
		calls:       map[string]int{},
		lastPayload: map[string]string{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Head("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/api/users/init", s.handleInitUser)
	r.Get("/api/users/notifications", s.handleNotifications)
	r.Route("/api/diaries", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/today", s.handleToday)
		r.Post("/save", s.handleSave)
		r.Get("/saved", s.handleSaved)
		r.Get("/my", s.handleMine)
	})
	return r
}

// record counts calls and short-circuits routes configured to fail.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + strings.TrimRight(r.URL.Path, "/")

		s.mu.Lock()
		s.calls[route]++
		s.requestIDs = append(s.requestIDs, r.Header.Get(constants.RequestIDHeader))
		f, failing := s.failures[route]
		s.mu.Unlock()

		if failing {
			if f.detail != "" {
				writeDetail(w, f.status, f.detail)
			} else {
				w.WriteHeader(f.status)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetClock replaces the server's time source.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of requests across every route.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// RequestIDs returns the request id header of every request in order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// LastPayload returns the raw body of the last request to route.
func (s *Server) LastPayload(route string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPayload[route]
}

// FailWith makes route answer status, with a {"detail": ...} body when detail is set.
func (s *Server) FailWith(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// Recover removes a configured failure.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// QueueToday makes the next today call return exactly batch, regardless of
// the distribution state. Batches are consumed in order.
func (s *Server) QueueToday(batch ...models.Diary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if batch == nil {
		batch = []models.Diary{}
	}
	s.queued = append(s.queued, batch)
}

// Seed stores an entry authored by authorID and returns it.
func (s *Server) Seed(authorID, content string) models.Diary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(authorID, content)
}

// SaveCount returns the stored saved_count of diaryID.
func (s *Server) SaveCount(diaryID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.diaries[diaryID]; ok {
		return d.Saves()
	}
	return 0
}

func (s *Server) create(authorID, content string) models.Diary {
	s.nextDiary++
	zero := 0
	d := &models.Diary{
		ID:         fmt.Sprintf("diary-%d", s.nextDiary),
		Content:    content,
		CreatedAt:  models.NewTimestamp(s.now().UTC()),
		SavedCount: &zero,
	}
	s.diaries[d.ID] = d
	s.authors[d.ID] = authorID
	s.order = append(s.order, d.ID)
	return *d
}

func (s *Server) handleInitUser(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.nextUser++
	userID := fmt.Sprintf("user-%d", s.nextUser)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		Content string `json:"content"`
	}
	if !s.decode(w, r, RouteCreateDiary, &req) {
		return
	}
	if req.UserID == "" || strings.TrimSpace(req.Content) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "user_id and content are required")
		return
	}

	s.mu.Lock()
	d := s.create(req.UserID, req.Content)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "user_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queued) > 0 {
		batch := s.queued[0]
		s.queued = s.queued[1:]
		writeJSON(w, http.StatusOK, batch)
		return
	}

	seen := s.delivered[userID]
	if seen == nil {
		seen = map[string]bool{}
		s.delivered[userID] = seen
	}
	out := []models.Diary{}
	for _, id := range s.order {
		if s.authors[id] == userID || seen[id] {
			continue
		}
		seen[id] = true
		d := *s.diaries[id]
		d.SavedCount = nil
		out = append(out, d)
		break
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		DiaryID string `json:"diary_id"`
	}
	if !s.decode(w, r, RouteSave, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.diaries[req.DiaryID]
	if !ok {
		writeDetail(w, http.StatusNotFound, "diary not found")
		return
	}
	now := s.now().UTC()
	today := now.Format(constants.DateFormat)
	for _, rec := range s.saved[req.UserID] {
		if rec.at.Format(constants.DateFormat) == today {
			writeDetail(w, http.StatusBadRequest, "already saved today")
			return
		}
	}

	s.saved[req.UserID] = append(s.saved[req.UserID], savedRecord{diaryID: d.ID, at: now})
	n := d.Saves() + 1
	d.SavedCount = &n
	s.notified[d.ID] = true

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleSaved(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Diary{}
	for _, rec := range s.saved[userID] {
		d := *s.diaries[rec.diaryID]
		at := models.NewTimestamp(rec.at)
		d.SavedAt = &at
		d.SavedCount = nil
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Diary{}
	for _, id := range s.order {
		if s.authors[id] == userID {
			out = append(out, *s.diaries[id])
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Diary{}
	for _, id := range s.order {
		if s.authors[id] == userID && s.notified[id] {
			out = append(out, *s.diaries[id])
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, route string, v any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "unreadable body")
		return false
	}
	s.mu.Lock()
	s.lastPayload[route] = string(body)
	s.mu.Unlock()

	if err := json.Unmarshal(body, v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
