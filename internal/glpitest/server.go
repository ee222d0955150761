// Package glpitest provides an in-memory GLPI REST API for tests.
package glpitest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// BasePath is where the fake mounts the API, as GLPI does.
const BasePath = "/apirest.php"

// Default credentials accepted by a new Server.
const (
	DefaultUserToken = "user-token"
	DefaultUsername  = "glpi"
	DefaultPassword  = "glpi"
)

// RecordedRequest is one request received by the fake.
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// Server is a fake GLPI API backed by maps. It is safe for concurrent use.
type Server struct {
	*httptest.Server

	userToken string
	username  string
	password  string
	appToken  string

	mu         sync.Mutex
	sessions   map[string]bool
	nextSessID int
	items      map[string]map[int]glpi.Record
	subItems   map[string][]glpi.Record
	documents  map[int][]byte
	nextID     int
	requests   []RecordedRequest
	profileID  string
	entityID   string
	recursive  bool
}

// Option configures a Server before it starts.
type Option func(*Server)

// WithUserToken sets the accepted personal API token.
func WithUserToken(token string) Option {
	return func(s *Server) {
		s.userToken = token
	}
}

// WithCredentials sets the accepted login and password.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithAppToken makes the fake reject requests whose App-Token differs.
func WithAppToken(token string) Option {
	return func(s *Server) {
		s.appToken = token
	}
}

// NewServer starts a fake with the default credentials. Call Close when done.
func NewServer(opts ...Option) *Server {
	server := &Server{
		userToken: DefaultUserToken,
		username:  DefaultUsername,
		password:  DefaultPassword,
		sessions:  make(map[string]bool),
		items:     make(map[string]map[int]glpi.Record),
		subItems:  make(map[string][]glpi.Record),
		documents: make(map[int][]byte),
		profileID: "4",
		entityID:  "0",
	}

	for _, opt := range opts {
		opt(server)
	}

	server.Server = httptest.NewServer(server.routes())

	return server
}

// Endpoint returns the API base URL to configure a client with.
func (s *Server) Endpoint() string {
	return s.URL + BasePath
}

// AddItem stores a record and returns its id.
func (s *Server) AddItem(itemType glpi.ItemType, record glpi.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addItemLocked(string(itemType), record)
}

// AddSubItem stores a record below parentType/parentID.
func (s *Server) AddSubItem(parentType glpi.ItemType, parentID int, subType glpi.ItemType, record glpi.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := subKey(string(parentType), strconv.Itoa(parentID), string(subType))
	s.subItems[key] = append(s.subItems[key], record)
}

// AddDocument stores a Document item whose file content is content.
func (s *Server) AddDocument(name string, content []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.addItemLocked(string(glpi.ItemTypeDocument), glpi.Record{"name": name, "filename": name})
	s.documents[id] = content

	return id
}

// Item returns a copy of a stored record.
func (s *Server) Item(itemType glpi.ItemType, id int) (glpi.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[string(itemType)][id]
	if !ok {
		return nil, false
	}

	return copyRecord(record), true
}

// OpenSession registers a session token as valid.
func (s *Server) OpenSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = true
}

// HasSession reports whether token is a live session.
func (s *Server) HasSession(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions[token]
}

// ActiveProfile returns the profile id last set through changeActiveProfile.
func (s *Server) ActiveProfile() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.profileID
}

// ActiveEntity returns the entity id and recursion last set through
// changeActiveEntities.
func (s *Server) ActiveEntity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.entityID, s.recursive
}

// Requests returns the requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)

	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return RecordedRequest{}
	}

	return s.requests[len(s.requests)-1]
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route(BasePath, func(r chi.Router) {
		r.Use(s.checkAppToken)

		r.Get("/initSession", s.initSession)
		r.Put("/lostPassword", s.lostPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/killSession", s.killSession)
			r.Get("/getFullSession", s.fullSession)
			r.Get("/getMyProfiles", s.myProfiles)
			r.Get("/getActiveProfile", s.activeProfile)
			r.Post("/changeActiveProfile", s.changeActiveProfile)
			r.Get("/getMyEntities", s.myEntities)
			r.Get("/getActiveEntities", s.activeEntities)
			r.Post("/changeActiveEntities", s.changeActiveEntities)
			r.Get("/getGlpiConfig", s.glpiConfig)
			r.Get("/listSearchOptions/{itemtype}", s.searchOptions)
			r.Get("/search/{itemtype}", s.search)

			r.Get("/{itemtype}", s.listItems)
			r.Post("/{itemtype}", s.createItems)
			r.Delete("/{itemtype}", s.deleteItems)
			r.Get("/{itemtype}/{id}", s.getItem)
			r.Put("/{itemtype}/{id}", s.updateItem)
			r.Delete("/{itemtype}/{id}", s.deleteItem)
			r.Get("/{itemtype}/{id}/{subtype}", s.listSubItems)
		})
	})

	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := readBody(r)

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:  r.Method,
			Path:    strings.TrimPrefix(r.URL.Path, BasePath),
			Headers: r.Header.Clone(),
			Body:    body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkAppToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appToken := r.Header.Get(glpi.HeaderAppToken)
		if s.appToken != "" && appToken != "" && appToken != s.appToken {
			writeError(w, http.StatusBadRequest, glpi.ErrorCodeWrongAppToken, "parameter app_token seems wrong")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(glpi.HeaderSessionToken)
		if token == "" {
			writeError(w, http.StatusBadRequest, glpi.ErrorCodeSessionTokenMissing, "parameter session_token is missing or empty")

			return
		}

		if !s.HasSession(token) {
			writeError(w, http.StatusUnauthorized, glpi.ErrorCodeSessionTokenInvalid, "session_token seems invalid")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initSession(w http.ResponseWriter, r *http.Request) {
	authorization := r.Header.Get(glpi.HeaderAuthorization)

	switch {
	case authorization == "":
		writeError(w, http.StatusBadRequest, glpi.ErrorCodeLoginParamsMissing, "parameter(s) login, password or user_token are missing")

		return
	case strings.HasPrefix(authorization, "user_token "):
		if strings.TrimPrefix(authorization, "user_token ") != s.userToken {
			writeError(w, http.StatusUnauthorized, glpi.ErrorCodeGlpiLoginUserToken, "parameter user_token seems invalid")

			return
		}
	case strings.HasPrefix(authorization, "Basic "):
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authorization, "Basic "))
		if err != nil || string(decoded) != s.username+":"+s.password {
			writeError(w, http.StatusUnauthorized, glpi.ErrorCodeGlpiLogin, "Incorrect username or password")

			return
		}
	default:
		writeError(w, http.StatusBadRequest, glpi.ErrorCodeLoginParamsMissing, "unsupported authorization")

		return
	}

	s.mu.Lock()
	s.nextSessID++
	token := fmt.Sprintf("sess-%d", s.nextSessID)
	s.sessions[token] = true
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"session_token": token})
}

func (s *Server) killSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.sessions, r.Header.Get(glpi.HeaderSessionToken))
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) fullSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	profileID, entityID := s.profileID, s.entityID
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"session": map[string]any{
			"glpiID":             2,
			"glpiname":           s.username,
			"glpirealname":       "Administrator",
			"glpifirstname":      "",
			"glpidefault_entity": 0,
			"glpiactive_entity":  entityID,
			"glpilanguage":       "en_GB",
			"glpi_currenttime":   "2024-01-01 00:00:00",
			"glpiactiveprofile": map[string]any{
				"id":        profileID,
				"name":      "Super-Admin",
				"interface": "central",
			},
			"glpiactive_entity_name": "Root entity",
		},
	})
}

func (s *Server) myProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"myprofiles": []map[string]any{
			{"id": 1, "name": "Self-Service"},
			{"id": 4, "name": "Super-Admin"},
		},
	})
}

func (s *Server) activeProfile(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	profileID := s.profileID
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"active_profile": map[string]any{"id": profileID, "name": "Super-Admin", "interface": "central"},
	})
}

func (s *Server) changeActiveProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProfilesID json.RawMessage `json:"profiles_id"`
	}

	err := decodeBody(r, &body)
	if err != nil || len(body.ProfilesID) == 0 {
		writeError(w, http.StatusBadRequest, glpi.ErrorCodeBadArray, "missing profiles_id")

		return
	}

	s.mu.Lock()
	s.profileID = strings.Trim(string(body.ProfilesID), `"`)
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) myEntities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"myentities": []map[string]any{{"id": 0, "name": "Root entity"}},
	})
}

func (s *Server) activeEntities(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	entityID, recursive := s.entityID, s.recursive
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"active_entity": map[string]any{
			"id":                      entityID,
			"active_entity_recursive": recursive,
			"active_entities":         []map[string]any{{"id": entityID}},
		},
	})
}

func (s *Server) changeActiveEntities(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EntitiesID  json.RawMessage `json:"entities_id"`
		IsRecursive bool            `json:"is_recursive"`
	}

	err := decodeBody(r, &body)
	if err != nil || len(body.EntitiesID) == 0 {
		writeError(w, http.StatusBadRequest, glpi.ErrorCodeBadArray, "missing entities_id")

		return
	}

	s.mu.Lock()
	s.entityID = strings.Trim(string(body.EntitiesID), `"`)
	s.recursive = body.IsRecursive
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) glpiConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cfg_glpi": map[string]any{"version": "10.0.10", "url_base": s.URL},
	})
}

func (s *Server) lostPassword(w http.ResponseWriter, r *http.Request) {
	var body map[string]string

	err := decodeBody(r, &body)
	if err != nil || body["email"] == "" {
		writeError(w, http.StatusBadRequest, "ERROR_MISSING_PARAMETER", "email is required")

		return
	}

	if _, hasToken := body["password_forget_token"]; hasToken && body["password"] == "" {
		writeError(w, http.StatusBadRequest, "ERROR_MISSING_PARAMETER", "password is required")

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) searchOptions(w http.ResponseWriter, r *http.Request) {
	if !s.knownType(w, r) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"common": "Characteristics",
		"1":      map[string]any{"name": "Name", "table": "glpi_" + strings.ToLower(chi.URLParam(r, "itemtype")) + "s", "field": "name"},
		"2":      map[string]any{"name": "ID", "field": "id"},
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	if !s.knownType(w, r) {
		return
	}

	records := s.sortedItems(chi.URLParam(r, "itemtype"))
	data := make([]map[string]any, 0, len(records))

	for _, record := range records {
		data = append(data, map[string]any{"1": record["name"], "2": record["id"]})
	}

	status := http.StatusOK
	if len(data) > 0 {
		status = http.StatusPartialContent
	}

	writeJSON(w, status, map[string]any{
		"totalcount": len(data),
		"count":      len(data),
		"data":       data,
	})
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	if !s.knownType(w, r) {
		return
	}

	records := s.sortedItems(chi.URLParam(r, "itemtype"))
	w.Header().Set("Content-Range", fmt.Sprintf("0-%d/%d", max(len(records)-1, 0), len(records)))
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	itemType := chi.URLParam(r, "itemtype")

	id, record, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if itemType == string(glpi.ItemTypeDocument) && r.Header.Get(glpi.HeaderAccept) == glpi.ContentTypeOctetStream {
		s.mu.Lock()
		content := s.documents[id]
		s.mu.Unlock()

		w.Header().Set(glpi.HeaderContentType, glpi.ContentTypeOctetStream)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)

		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) listSubItems(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.lookup(w, r); !ok {
		return
	}

	s.mu.Lock()
	records := append([]glpi.Record{}, s.subItems[subKey(chi.URLParam(r, "itemtype"), chi.URLParam(r, "id"), chi.URLParam(r, "subtype"))]...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) createItems(w http.ResponseWriter, r *http.Request) {
	if !s.knownType(w, r) {
		return
	}

	itemType := chi.URLParam(r, "itemtype")

	input, err := decodeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, glpi.ErrorCodeJSONPayloadInvalid, err.Error())

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if input.many {
		results := make([]map[string]any, 0, len(input.records))
		for _, record := range input.records {
			results = append(results, map[string]any{"id": s.addItemLocked(itemType, record), "message": ""})
		}

		writeJSON(w, http.StatusCreated, results)

		return
	}

	id := s.addItemLocked(itemType, input.records[0])
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "message": ""})
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.lookup(w, r)
	if !ok {
		return
	}

	input, err := decodeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, glpi.ErrorCodeJSONPayloadInvalid, err.Error())

		return
	}

	s.mu.Lock()
	if stored, exists := s.items[chi.URLParam(r, "itemtype")][id]; exists {
		for key, value := range input.records[0] {
			if key != "id" {
				stored[key] = value
			}
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, []map[string]any{{strconv.Itoa(id): true, "message": ""}})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.lookup(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.items[chi.URLParam(r, "itemtype")], id)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, []map[string]any{{strconv.Itoa(id): true, "message": ""}})
}

func (s *Server) deleteItems(w http.ResponseWriter, r *http.Request) {
	if !s.knownType(w, r) {
		return
	}

	itemType := chi.URLParam(r, "itemtype")

	input, err := decodeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, glpi.ErrorCodeJSONPayloadInvalid, err.Error())

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	status := http.StatusOK
	results := make([]map[string]any, 0, len(input.records))

	for _, record := range input.records {
		key := record.ID()
		id, _ := strconv.Atoi(key)

		if _, exists := s.items[itemType][id]; !exists {
			status = http.StatusMultiStatus
			results = append(results, map[string]any{key: false, "message": "Item not found"})

			continue
		}

		delete(s.items[itemType], id)
		results = append(results, map[string]any{key: true, "message": ""})
	}

	writeJSON(w, status, results)
}

func (s *Server) knownType(w http.ResponseWriter, r *http.Request) bool {
	itemType := glpi.ItemType(chi.URLParam(r, "itemtype"))
	if !itemType.IsKnown() {
		writeError(w, http.StatusBadRequest, glpi.ErrorCodeResourceNotFound, "resource not found or not an instance of CommonDBTM")

		return false
	}

	return true
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (int, glpi.Record, bool) {
	if !s.knownType(w, r) {
		return 0, nil, false
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))

	s.mu.Lock()
	record, exists := s.items[chi.URLParam(r, "itemtype")][id]
	if exists {
		record = copyRecord(record)
	}
	s.mu.Unlock()

	if err != nil || !exists {
		writeError(w, http.StatusNotFound, glpi.ErrorCodeItemNotFound, "Item not found")

		return 0, nil, false
	}

	return id, record, true
}

func (s *Server) sortedItems(itemType string) []glpi.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.items[itemType]))
	for id := range s.items[itemType] {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	records := make([]glpi.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, copyRecord(s.items[itemType][id]))
	}

	return records
}

func (s *Server) addItemLocked(itemType string, record glpi.Record) int {
	if s.items[itemType] == nil {
		s.items[itemType] = make(map[int]glpi.Record)
	}

	s.nextID++
	stored := copyRecord(record)
	stored["id"] = s.nextID
	s.items[itemType][s.nextID] = stored

	return s.nextID
}

func subKey(parentType, parentID, subType string) string {
	return parentType + "/" + parentID + "/" + subType
}

func copyRecord(record glpi.Record) glpi.Record {
	out := make(glpi.Record, len(record))
	for key, value := range record {
		out[key] = value
	}

	return out
}
