package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The suite runs against a live server, e.g.
//
//	SALON_API_URL=http://localhost:8080/api/v1 go test ./test/api/...
const apiURLEnv = "SALON_API_URL"

type client struct {
	baseURL string
	http    *http.Client
	token   string
}

func newClient(t *testing.T) *client {
	t.Helper()
	base := os.Getenv(apiURLEnv)
	if base == "" {
		t.Skipf("%s not set; skipping API tests", apiURLEnv)
	}
	c := &client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		token:   os.Getenv("SALON_API_TOKEN"),
	}

	status, _ := c.do(t, http.MethodGet, "/health/ready", nil, nil)
	if status != http.StatusOK {
		t.Skipf("API at %s is not ready (status %d)", c.baseURL, status)
	}
	return c
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *client) do(t *testing.T, method, path string, body, out interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp.StatusCode, raw
}

func (c *client) mustDo(t *testing.T, method, path string, body, out interface{}, want int) {
	t.Helper()
	status, raw := c.do(t, method, path, body, out)
	require.Equal(t, want, status, "%s %s: %s", method, path, raw)
}

type document struct {
	ID string `json:"id"`
}

type listResult struct {
	Docs      []json.RawMessage `json:"docs"`
	TotalDocs int               `json:"totalDocs"`
}

type actionResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Value   json.RawMessage `json:"value"`
}
