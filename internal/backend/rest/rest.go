// Package rest implements backend.Backend against the task-management REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// RequestIDHeader carries a per request ID for backend side correlation.
const RequestIDHeader = "X-Request-ID"

// ClientConfig is the configuration for the REST client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://tasks.example.com/api".
	BaseURL string
	// HTTPClient sends the requests, it is expected to authenticate them (see auth.HTTPClient).
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "backend.REST"})
	return nil
}

// Client is a backend.Backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// NewClient creates a new REST client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}, nil
}

var _ backend.Backend = (*Client)(nil)

func (c *Client) ListTasks(ctx context.Context, filter backend.TaskFilter) (*backend.TaskPage, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.AssigneeID != "" {
		q.Set("assignee", filter.AssigneeID)
	}
	if filter.DueBefore != nil {
		q.Set("due_before", filter.DueBefore.String())
	}
	if filter.DueAfter != nil {
		q.Set("due_after", filter.DueAfter.String())
	}
	if filter.RootOnly {
		q.Set("parent_isnull", "true")
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/tasks/", q, nil, &raw); err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	var dtos []taskDTO
	res := &backend.TaskPage{}
	p, paginated, err := decodePage(raw, &dtos)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	if paginated {
		res.Total = p.Count
		if p.Next != nil && *p.Next != "" {
			res.NextPage = nextPage(*p.Next, page)
		}
	} else {
		res.Total = len(dtos)
	}

	res.Tasks = make([]model.Task, 0, len(dtos))
	for _, d := range dtos {
		res.Tasks = append(res.Tasks, d.toModel())
	}
	return res, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var dto taskDTO
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &dto); err != nil {
		return nil, fmt.Errorf("could not get task %q: %w", id, err)
	}
	t := dto.toModel()
	return &t, nil
}

func (c *Client) CreateTask(ctx context.Context, t backend.TaskCreate) (*model.Task, error) {
	if t.DueDate.IsZero() {
		return nil, fmt.Errorf("due date is required: %w", model.ErrNotValid)
	}

	body := taskCreateDTO{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Status:      t.Status,
		Priority:    t.Priority,
	}
	if t.AssigneeID != "" {
		body.AssigneeID = &t.AssigneeID
	}
	if t.ParentID != "" {
		body.Parent = &t.ParentID
	}

	var dto taskDTO
	if err := c.do(ctx, http.MethodPost, "/tasks/", nil, body, &dto); err != nil {
		return nil, fmt.Errorf("could not create task: %w", err)
	}
	created := dto.toModel()
	return &created, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch backend.TaskPatch) (*model.Task, error) {
	fields := map[string]any{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Status != nil {
		fields["status"] = string(*patch.Status)
	}
	patchBody(fields, "start_date", patch.StartDate.Set, patch.StartDate.Value)
	patchBody(fields, "end_date", patch.EndDate.Set, patch.EndDate.Value)
	patchBody(fields, "due_date", patch.DueDate.Set, patch.DueDate.Value)

	var dto taskDTO
	if err := c.do(ctx, http.MethodPatch, taskPath(id), nil, fields, &dto); err != nil {
		return nil, fmt.Errorf("could not update task %q: %w", id, err)
	}
	t := dto.toModel()
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("could not delete task %q: %w", id, err)
	}
	return nil
}

func (c *Client) ListDependencies(ctx context.Context, filter backend.DependencyFilter) ([]model.Dependency, error) {
	q := url.Values{}
	if filter.PredecessorID != "" {
		q.Set("predecessor_id", filter.PredecessorID)
	}
	if filter.SuccessorID != "" {
		q.Set("successor_id", filter.SuccessorID)
	}

	var all []model.Dependency
	for page := 1; page > 0; {
		if page > 1 {
			q.Set("page", strconv.Itoa(page))
		}
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, "/task-dependencies/", q, nil, &raw); err != nil {
			return nil, fmt.Errorf("could not list dependencies: %w", err)
		}
		var dtos []dependencyDTO
		p, paginated, err := decodePage(raw, &dtos)
		if err != nil {
			return nil, fmt.Errorf("could not list dependencies: %w", err)
		}
		for _, d := range dtos {
			all = append(all, d.toModel())
		}

		next := 0
		if paginated && p.Next != nil && *p.Next != "" {
			next = nextPage(*p.Next, page)
		}
		page = next
	}

	return all, nil
}

func (c *Client) CreateDependency(ctx context.Context, d backend.DependencyCreate) (*model.Dependency, error) {
	var dto dependencyDTO
	if err := c.do(ctx, http.MethodPost, "/task-dependencies/", nil, dependencyBody(d), &dto); err != nil {
		return nil, fmt.Errorf("could not create dependency: %w", err)
	}
	dep := dto.toModel()
	return &dep, nil
}

func (c *Client) UpdateDependency(ctx context.Context, id string, d backend.DependencyCreate) (*model.Dependency, error) {
	var dto dependencyDTO
	if err := c.do(ctx, http.MethodPut, dependencyPath(id), nil, dependencyBody(d), &dto); err != nil {
		return nil, fmt.Errorf("could not update dependency %q: %w", id, err)
	}
	dep := dto.toModel()
	return &dep, nil
}

func (c *Client) DeleteDependency(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, dependencyPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("could not delete dependency %q: %w", id, err)
	}
	return nil
}

func (c *Client) GanttData(ctx context.Context) (*model.GanttData, error) {
	var dto ganttDTO
	if err := c.do(ctx, http.MethodGet, "/tasks/gantt_data/", nil, nil, &dto); err != nil {
		return nil, fmt.Errorf("could not get gantt data: %w", err)
	}

	data := &model.GanttData{
		Tasks:        make([]model.Task, 0, len(dto.Tasks)),
		Dependencies: make([]model.Dependency, 0, len(dto.Links)),
	}
	titles := map[string]string{}
	for _, t := range dto.Tasks {
		task := t.toModel()
		titles[task.ID] = task.Title
		data.Tasks = append(data.Tasks, task)
	}
	for _, l := range dto.Links {
		data.Dependencies = append(data.Dependencies, model.Dependency{
			ID:               l.ID,
			PredecessorID:    l.Source,
			SuccessorID:      l.Target,
			Type:             l.Type,
			LagDays:          l.Lag,
			PredecessorTitle: titles[l.Source],
			SuccessorTitle:   titles[l.Target],
		})
	}
	return data, nil
}

func (c *Client) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/employees/", nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("could not list employees: %w", err)
	}
	var dtos []employeeDTO
	if _, _, err := decodePage(raw, &dtos); err != nil {
		return nil, fmt.Errorf("could not list employees: %w", err)
	}

	emps := make([]model.Employee, 0, len(dtos))
	for _, d := range dtos {
		if !d.IsActive {
			continue
		}
		emps = append(emps, d.toModel())
	}
	sort.SliceStable(emps, func(i, j int) bool { return emps[i].FullName < emps[j].FullName })
	return emps, nil
}

// do sends a JSON request and decodes the JSON response into out when not nil.
// Every failure is returned as a *model.BackendError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &model.BackendError{Message: "could not encode request", Err: err}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return &model.BackendError{Message: "could not build request", Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := c.logger.WithValues(log.Kv{"method": method, "path": path, "request-id": reqID})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// Token refresh failures surface here wrapped by the transport.
		var berr *model.BackendError
		if errors.As(err, &berr) {
			return berr
		}
		return &model.BackendError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	logger.Debugf("%d in %s", resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.BackendError{StatusCode: resp.StatusCode, Message: "could not read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		berr := &model.BackendError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, respBody)}
		logger.Warningf("backend rejected request: %s", berr.Message)
		return berr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &model.BackendError{StatusCode: resp.StatusCode, Message: "could not decode response", Err: err}
	}
	return nil
}

// errorMessage extracts a human message from an error body. The API answers
// with {"detail": ...}, {"error": ...} or a map of field errors.
func errorMessage(status int, body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil && len(obj) > 0 {
		for _, key := range []string{"detail", "error"} {
			if raw, ok := obj[key]; ok {
				if msg := flatten(raw); msg != "" {
					return msg
				}
			}
		}

		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, 0, len(keys))
		for _, k := range keys {
			if msg := flatten(obj[k]); msg != "" {
				msgs = append(msgs, k+": "+msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) < 200 && !strings.HasPrefix(msg, "<") {
		return msg
	}
	return http.StatusText(status)
}

// flatten renders a JSON string or list of strings.
func flatten(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}

// decodePage decodes either a paginated envelope or a plain array into results.
func decodePage(raw json.RawMessage, results any) (pageDTO, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, results); err != nil {
			return pageDTO{}, false, &model.BackendError{Message: "could not decode response", Err: err}
		}
		return pageDTO{}, false, nil
	}

	var p pageDTO
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return pageDTO{}, false, &model.BackendError{Message: "could not decode response", Err: err}
	}
	if len(p.Results) > 0 {
		if err := json.Unmarshal(p.Results, results); err != nil {
			return pageDTO{}, false, &model.BackendError{Message: "could not decode response", Err: err}
		}
	}
	return p, true, nil
}

// nextPage reads the page number of a "next" link, falling back to current+1.
func nextPage(next string, current int) int {
	u, err := url.Parse(next)
	if err != nil {
		return current + 1
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n <= current {
		return current + 1
	}
	return n
}

func dependencyBody(d backend.DependencyCreate) dependencyDTO {
	typ := d.Type
	if typ == "" {
		typ = model.DependencyFinishToStart
	}
	return dependencyDTO{
		Predecessor:    d.PredecessorID,
		Successor:      d.SuccessorID,
		DependencyType: typ,
		LagDays:        d.LagDays,
	}
}

func taskPath(id string) string       { return "/tasks/" + url.PathEscape(id) + "/" }
func dependencyPath(id string) string { return "/task-dependencies/" + url.PathEscape(id) + "/" }
