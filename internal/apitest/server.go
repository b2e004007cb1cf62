// Package apitest provides an in-memory /employees REST backend for tests,
// shaped like the json-server resource the console talks to.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
)

// Failure is a canned error response returned by the next matching request.
type Failure struct {
	Method string
	Status int
	Body   string
}

// Server is an echo application holding employees in memory.
type Server struct {
	Echo *echo.Echo

	mu       sync.Mutex
	nextID   int
	records  map[int]domain.Employee
	failures []Failure
	calls    map[string]int
}

// NewServer creates a server seeded with the given records. Records without
// an id are assigned one.
func NewServer(seed ...domain.Employee) *Server {
	s := &Server{
		Echo:    echo.New(),
		nextID:  1,
		records: make(map[int]domain.Employee),
		calls:   make(map[string]int),
	}
	s.Echo.HideBanner = true
	for _, e := range seed {
		s.insert(e)
	}
	s.RegisterRoutes()
	return s
}

// Start serves the application on a local httptest listener.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Echo)
}

func (s *Server) RegisterRoutes() {
	s.Echo.Use(s.countAndFail)
	s.Echo.GET("/employees", s.ListHandler)
	s.Echo.POST("/employees", s.CreateHandler)
	s.Echo.GET("/employees/:id", s.GetHandler)
	s.Echo.PUT("/employees/:id", s.UpdateHandler)
	s.Echo.DELETE("/employees/:id", s.DeleteHandler)
}

// FailNext queues a canned failure for the next request with the method.
func (s *Server) FailNext(method string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, Failure{Method: method, Status: status, Body: body})
}

// Calls returns how many requests with the method were received.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Records returns the stored employees ordered by id.
func (s *Server) Records() []domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Server) countAndFail(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		method := c.Request().Method
		s.mu.Lock()
		s.calls[method]++
		for i, f := range s.failures {
			if f.Method == method {
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
				s.mu.Unlock()
				return c.String(f.Status, f.Body)
			}
		}
		s.mu.Unlock()
		return next(c)
	}
}

// bindBody binds only the JSON body so the :id path param never touches the record.
func bindBody(c echo.Context, i interface{}) error {
	return (&echo.DefaultBinder{}).BindBody(c, i)
}

func (s *Server) insert(e domain.Employee) domain.Employee {
	if e.ID == nil {
		e.ID = domain.IntPtr(s.nextID)
	}
	if *e.ID >= s.nextID {
		s.nextID = *e.ID + 1
	}
	s.records[*e.ID] = e
	return e
}

func (s *Server) sortedLocked() []domain.Employee {
	out := make([]domain.Employee, 0, len(s.records))
	for _, e := range s.records {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out
}

func (s *Server) ListHandler(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.sortedLocked())
}

func (s *Server) GetHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid employee ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[id]
	if !ok {
		return c.String(http.StatusNotFound, "")
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) CreateHandler(c echo.Context) error {
	var req domain.Employee
	if err := bindBody(c, &req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	req.ID = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusCreated, s.insert(req))
}

func (s *Server) UpdateHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid employee ID")
	}

	var req domain.Employee
	if err := bindBody(c, &req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	req.ID = domain.IntPtr(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return c.String(http.StatusNotFound, "")
	}
	s.records[id] = req
	return c.JSON(http.StatusOK, req)
}

func (s *Server) DeleteHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid employee ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return c.String(http.StatusNotFound, "")
	}
	delete(s.records, id)
	return c.JSON(http.StatusOK, map[string]interface{}{})
}
