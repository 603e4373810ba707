package clienttest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/rest"

	"github.com/dmitrijs2005/securapass/internal/client/models"
)

const createdAtLayout = "2006-01-02T15:04:05.000000Z"

// Manager fakes the password manager service. Entries live in memory and
// listings are ordered by website, like the real service.
type Manager struct {
	*httptest.Server

	mu         sync.Mutex
	nextID     int64
	entries    map[int64]models.Entry
	master     string
	token      string
	requestIDs []string
	authHeader []string
}

func NewManager(t testing.TB) *Manager {
	t.Helper()

	m := &Manager{
		nextID:  1,
		entries: make(map[int64]models.Entry),
	}

	router := newRouter()
	router.Use(m.recordHeaders)
	router.HandleFunc("GET /health", m.handleHealth)
	router.HandleFunc("POST /verify-master", m.handleVerify)
	router.HandleFunc("GET /entries", m.handleList)
	router.HandleFunc("POST /entries", m.handleCreate)
	router.HandleFunc("GET /entries/{id}", m.handleGet)
	router.HandleFunc("PUT /entries/{id}", m.handleUpdate)
	router.HandleFunc("DELETE /entries/{id}", m.handleDelete)

	m.Server = httptest.NewServer(router)
	t.Cleanup(m.Close)
	return m
}

// SetMaster sets the master password accepted by /verify-master. While unset
// the first verification sets it, as the real service does on first use.
func (m *Manager) SetMaster(password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = password
}

// RequireToken makes GET /entries/{id} demand the given bearer token.
func (m *Manager) RequireToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// Seed stores an entry directly and returns its id.
func (m *Manager) Seed(website, username, password string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(website, username, password)
}

// Password returns the stored password of id, for assertions.
func (m *Manager) Password(id int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e.Password, ok
}

func (m *Manager) RequestIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requestIDs...)
}

// AuthHeaders returns the Authorization header of every request, empty when
// absent.
func (m *Manager) AuthHeaders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.authHeader...)
}

func (m *Manager) recordHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requestIDs = append(m.requestIDs, r.Header.Get("X-Request-ID"))
		m.authHeader = append(m.authHeader, r.Header.Get("Authorization"))
		m.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) insert(website, username, password string) int64 {
	id := m.nextID
	m.nextID++
	m.entries[id] = models.Entry{
		ID:        id,
		Website:   website,
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().UTC().Format(createdAtLayout),
	}
	return id
}

func (m *Manager) handleHealth(w http.ResponseWriter, _ *http.Request) {
	render(w, http.StatusOK, rest.JSON{"status": "ok"})
}

func (m *Manager) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		render(w, http.StatusUnprocessableEntity, rest.JSON{"detail": err.Error()})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.master == "" {
		m.master = req.Password
	}
	render(w, http.StatusOK, rest.JSON{"verified": req.Password == m.master})
}

func (m *Manager) handleList(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	list := make([]models.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		e.Password = ""
		list = append(list, e)
	}
	m.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Website == list[j].Website {
			return list[i].ID < list[j].ID
		}
		return list[i].Website < list[j].Website
	})
	render(w, http.StatusOK, list)
}

func (m *Manager) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.EntryInput
	if err := decode(r, &in); err != nil || in.Website == "" || in.Password == "" {
		render(w, http.StatusUnprocessableEntity, rest.JSON{"detail": "website and password are required"})
		return
	}

	m.mu.Lock()
	id := m.insert(in.Website, in.Username, in.Password)
	e := m.entries[id]
	m.mu.Unlock()

	e.Password = ""
	render(w, http.StatusOK, e)
}

func (m *Manager) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	m.mu.Lock()
	token := m.token
	e, found := m.entries[id]
	m.mu.Unlock()

	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		render(w, http.StatusUnauthorized, rest.JSON{"detail": "Not authenticated"})
		return
	}
	if !found {
		render(w, http.StatusNotFound, rest.JSON{"detail": "Entry not found"})
		return
	}
	render(w, http.StatusOK, e)
}

func (m *Manager) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var upd models.EntryUpdate
	if err := decode(r, &upd); err != nil {
		render(w, http.StatusUnprocessableEntity, rest.JSON{"detail": err.Error()})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, found := m.entries[id]
	if !found {
		render(w, http.StatusNotFound, rest.JSON{"detail": "Entry not found"})
		return
	}
	if upd.Empty() {
		render(w, http.StatusBadRequest, rest.JSON{"detail": "Nothing to update"})
		return
	}
	if upd.Website != nil {
		e.Website = *upd.Website
	}
	if upd.Username != nil {
		e.Username = *upd.Username
	}
	if upd.Password != nil {
		e.Password = *upd.Password
	}
	m.entries[id] = e
	render(w, http.StatusOK, rest.JSON{"status": "updated"})
}

func (m *Manager) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.entries[id]; !found {
		render(w, http.StatusNotFound, rest.JSON{"detail": "Entry not found"})
		return
	}
	delete(m.entries, id)
	render(w, http.StatusOK, rest.JSON{"status": "deleted"})
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		render(w, http.StatusUnprocessableEntity, rest.JSON{"detail": "id must be an integer"})
		return 0, false
	}
	return id, true
}
