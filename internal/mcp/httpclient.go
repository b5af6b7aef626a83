package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftplan/internal/editor"
	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftPlan REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey is
// sent with edit requests and may be empty when the server has none configured.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, program.ErrProgramNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) ListPrograms(ctx context.Context, _ int) ([]models.Program, error) {
	var programs []models.Program
	if err := c.do(ctx, http.MethodGet, "/api/v1/programs", nil, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (c *HTTPClient) GetProgram(ctx context.Context, _ int, programID uuid.UUID) (*models.ProgramDetail, error) {
	var detail models.ProgramDetail
	if err := c.do(ctx, http.MethodGet, "/api/v1/programs/"+programID.String(), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.ExerciseDef, error) {
	var defs []models.ExerciseDef
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises", nil, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (c *HTTPClient) ApplyEdits(ctx context.Context, _ int, programID uuid.UUID, operations json.RawMessage) (*program.Result, error) {
	body := map[string]json.RawMessage{"operations": operations}
	var result program.Result
	if err := c.do(ctx, http.MethodPost, "/api/v1/programs/"+programID.String()+"/edits", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetSummary(ctx context.Context, _ int, programID uuid.UUID) (*editor.ProgramSummary, error) {
	var summary editor.ProgramSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/programs/"+programID.String()+"/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
