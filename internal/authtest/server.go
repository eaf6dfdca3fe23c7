// Package authtest runs an in-process stand-in for the BlinkEd auth service.
// It speaks the same routes and error bodies as the real service and counts
// every call so tests can assert on network traffic.
package authtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Route names accepted by Calls.
const (
	RouteRegister = "register"
	RouteLogin    = "login"
	RouteProfile  = "profile"
)

var signingKey = []byte("authtest-signing-key-not-secret!")

type account struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	password string
}

// Server is a fake auth service.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	users   map[string]*account
	tokens  map[string]string
	calls   map[string]int
	headers []string
	nextID  int

	profileStatus int
	profileBody   string
	loginStatus   int
}

func NewServer() *Server {
	s := &Server{
		users:  make(map[string]*account),
		tokens: make(map[string]string),
		calls:  make(map[string]int),
		nextID: 1,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register/", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login/", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/me/", s.handleProfile).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	return s
}

// FailProfile makes GET /me/ answer with status.
func (s *Server) FailProfile(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileStatus = status
}

// FailLogin makes POST /login/ answer with status.
func (s *Server) FailLogin(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginStatus = status
}

// SetProfileBody replaces the successful GET /me/ body.
func (s *Server) SetProfileBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileBody = body
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(username, email, password)
}

func (s *Server) addLocked(username, email, password string) *account {
	a := &account{ID: s.nextID, Username: username, Email: email, password: password}
	s.nextID++
	s.users[username] = a
	return a
}

// Calls returns how many requests a route has served.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls is the sum over all routes.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// AuthHeaders returns the Authorization header of every request, in order.
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.headers...)
}

// IssueToken mints an access token for an existing user without a login call.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

// RevokeAll invalidates every issued access token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

func (s *Server) issueLocked(username string) string {
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
	}).SignedString(signingKey)
	s.tokens[signed] = username
	return signed
}

func (s *Server) record(route string, r *http.Request) {
	s.calls[route]++
	s.headers = append(s.headers, r.Header.Get("Authorization"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(RouteRegister, r)

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}

	fieldErrs := map[string][]string{}
	if req.Username == "" {
		fieldErrs["username"] = []string{"This field may not be blank."}
	} else if _, exists := s.users[req.Username]; exists {
		fieldErrs["username"] = []string{"A user with that username already exists."}
	}
	if req.Password == "" {
		fieldErrs["password"] = []string{"This field may not be blank."}
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	a := s.addLocked(req.Username, req.Email, req.Password)
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(RouteLogin, r)

	if s.loginStatus != 0 {
		writeJSON(w, s.loginStatus, map[string]string{"detail": http.StatusText(s.loginStatus)})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}

	a, ok := s.users[req.Username]
	if !ok || a.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "No active account found with the given credentials",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access":  s.issueLocked(a.Username),
		"refresh": uuid.NewString(),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(RouteProfile, r)

	if s.profileStatus != 0 {
		writeJSON(w, s.profileStatus, map[string]string{"detail": http.StatusText(s.profileStatus)})
		return
	}

	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Authentication credentials were not provided.",
		})
		return
	}

	username, ok := s.tokens[token]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Given token not valid for any token type",
			"code":   "token_not_valid",
		})
		return
	}

	if s.profileBody != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(s.profileBody))
		return
	}
	writeJSON(w, http.StatusOK, s.users[username])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
