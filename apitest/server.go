package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// Recorded is a request received by the server.
type Recorded struct {
	Method string
	Route  string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

// Server is a gin engine served by httptest.
type Server struct {
	*httptest.Server

	engine *gin.Engine

	mu       sync.Mutex
	hits     map[string]int
	requests []Recorded
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{engine: gin.New(), hits: make(map[string]int)}
	s.engine.Use(s.record)
	s.Server = httptest.NewServer(s.engine)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	rec := Recorded{
		Method: c.Request.Method,
		Route:  c.FullPath(),
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	}
	s.mu.Lock()
	s.hits[key(rec.Method, rec.Route)]++
	s.requests = append(s.requests, rec)
	s.mu.Unlock()

	c.Next()
}

func key(method, route string) string { return method + " " + route }

// Handle registers a gin handler for method and route.
func (s *Server) Handle(method, route string, h gin.HandlerFunc) {
	s.engine.Handle(method, route, h)
}

// JSON answers every request on route with status and body.
func (s *Server) JSON(method, route string, status int, body any) {
	s.Handle(method, route, func(c *gin.Context) {
		c.JSON(status, body)
	})
}

// Script answers successive requests with the given statuses; the last status
// repeats once the script is exhausted. Each response body is
// {"attempt": n} with n counting from 1.
func (s *Server) Script(method, route string, statuses ...int) {
	var (
		mu sync.Mutex
		n  int
	)
	s.Handle(method, route, func(c *gin.Context) {
		mu.Lock()
		n++
		attempt := n
		mu.Unlock()

		status := http.StatusOK
		if len(statuses) > 0 {
			status = statuses[min(attempt, len(statuses))-1]
		}
		c.JSON(status, gin.H{"attempt": attempt})
	})
}

// Echo answers with a JSON description of the request.
func (s *Server) Echo(method, route string) {
	s.Handle(method, route, func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, gin.H{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"query":  c.Request.URL.Query(),
			"header": c.Request.Header,
			"body":   string(body),
		})
	})
}

// Hits returns how many requests matched method and route.
func (s *Server) Hits(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key(method, route)]
}

// Requests returns every recorded request in arrival order.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Last returns the most recent request, or false if none arrived.
func (s *Server) Last() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}
