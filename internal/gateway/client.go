// Package gateway implements domain.EmployeeGateway over the REST
// resource <base>/employees.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/logger"
)

const (
	employeesPath   = "/employees"
	requestIDHeader = "X-Request-ID"
)

// Config holds the gateway settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the employees REST resource. It performs no retries.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

var _ domain.EmployeeGateway = (*Client)(nil)

// NewClient creates a new gateway client. When httpClient is nil a client
// with cfg.Timeout is created.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return &Client{baseURL: u, http: httpClient}, nil
}

func (c *Client) collectionURL() string {
	return c.baseURL.String() + employeesPath
}

func (c *Client) itemURL(id int) string {
	return c.collectionURL() + "/" + strconv.Itoa(id)
}

// List returns every employee.
func (c *Client) List(ctx context.Context) ([]domain.Employee, error) {
	var out []domain.Employee
	if err := c.do(ctx, "list employees", http.MethodGet, c.collectionURL(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one employee by id.
func (c *Client) Get(ctx context.Context, id int) (*domain.Employee, error) {
	var out domain.Employee
	if err := c.do(ctx, "get employee", http.MethodGet, c.itemURL(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new employee; the server assigns the id.
func (c *Client) Create(ctx context.Context, e domain.Employee) (*domain.Employee, error) {
	e.ID = nil
	var out domain.Employee
	if err := c.do(ctx, "create employee", http.MethodPost, c.collectionURL(), e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the employee with the given id.
func (c *Client) Update(ctx context.Context, id int, e domain.Employee) (*domain.Employee, error) {
	e.ID = domain.IntPtr(id)
	var out domain.Employee
	if err := c.do(ctx, "update employee", http.MethodPut, c.itemURL(id), e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete hard-deletes the employee with the given id.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete employee", http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, target string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &domain.GatewayError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &domain.GatewayError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx = logger.WithLogger(ctx, map[string]interface{}{"request_id": requestID})
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		logger.WarnLog(ctx, "%s %s failed: %v", method, target, err)
		return &domain.GatewayError{Op: op, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &domain.GatewayError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	logger.DebugLog(ctx, "%s %s -> %d in %s", method, target, res.StatusCode, time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return &domain.GatewayError{Op: op, StatusCode: res.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.GatewayError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
