// ABOUTME: One method per backend endpoint: query, polling, files, preview, models, screenshot
// ABOUTME: Reads of lists and file contents retry; mutations and probes go out once

package backend

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/mauromedda/seekdeck/internal/protocol"
)

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) (protocol.Health, error) {
	var h protocol.Health
	err := c.getJSON(ctx, "/health", false, &h)
	return h, err
}

// LatestAnswer fetches GET /latest_answer.
func (c *Client) LatestAnswer(ctx context.Context) (protocol.Answer, error) {
	var a protocol.Answer
	err := c.getJSON(ctx, "/latest_answer", false, &a)
	return a, err
}

// Query submits a user query. It blocks until the backend finishes the task.
func (c *Client) Query(ctx context.Context, text string) (protocol.Answer, error) {
	var a protocol.Answer
	err := c.sendJSON(ctx, http.MethodPost, "/query", protocol.Query{Query: text}, &a)
	return a, err
}

// Stop asks the backend to cancel the running task.
func (c *Client) Stop(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodGet, "/stop", nil, nil)
}

// NewProject discards the workspace and the conversation.
func (c *Client) NewProject(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/new_project", nil, nil)
}

// ClearHistory clears the conversation but keeps the workspace.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/clear_history", nil, nil)
}

// FileContent reads a project file.
func (c *Client) FileContent(ctx context.Context, path string) (protocol.FileContent, error) {
	var fc protocol.FileContent
	err := c.getJSON(ctx, "/api/file-content/"+escapePath(path), true, &fc)
	return fc, err
}

// SaveFile writes a project file.
func (c *Client) SaveFile(ctx context.Context, path, content string) (protocol.SaveResult, error) {
	var res protocol.SaveResult
	err := c.sendJSON(ctx, http.MethodPut, "/api/file-content/"+escapePath(path),
		protocol.SaveRequest{Content: content}, &res)
	return res, err
}

// PreviewFiles lists previewable artifacts.
func (c *Client) PreviewFiles(ctx context.Context) (protocol.PreviewFiles, error) {
	var pf protocol.PreviewFiles
	err := c.getJSON(ctx, "/api/preview-files", true, &pf)
	return pf, err
}

// ProjectFiles lists every file in the workspace.
func (c *Client) ProjectFiles(ctx context.Context) (protocol.ProjectFiles, error) {
	var pf protocol.ProjectFiles
	err := c.getJSON(ctx, "/api/project-files", true, &pf)
	return pf, err
}

// Preview fetches a preview artifact's raw body and content type.
func (c *Client) Preview(ctx context.Context, file string) ([]byte, string, error) {
	return c.getBytes(ctx, "/api/preview/"+escapePath(file), true)
}

// Models fetches the provider and model configuration.
func (c *Client) Models(ctx context.Context) (protocol.ModelConfig, error) {
	var mc protocol.ModelConfig
	err := c.getJSON(ctx, "/api/config/models", true, &mc)
	return mc, err
}

// ChangeModel switches the backend's provider and model.
func (c *Client) ChangeModel(ctx context.Context, provider, model string) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/config/update",
		protocol.ModelUpdate{ProviderName: provider, Model: model}, nil)
}

// Screenshot fetches the latest browser screenshot. The timestamp query
// parameter defeats intermediate caches.
func (c *Client) Screenshot(ctx context.Context, at time.Time) ([]byte, error) {
	path := "/screenshots/updated_screen.png?timestamp=" + strconv.FormatInt(at.UnixMilli(), 10)
	data, _, err := c.getBytes(ctx, path, false)
	return data, err
}

// Archive is a streamed project download.
type Archive struct {
	Name string
	Body io.ReadCloser
}

// DownloadZip streams the project archive. The caller closes Body.
func (c *Client) DownloadZip(ctx context.Context) (*Archive, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/download-zip", nil, false)
	if err != nil {
		return nil, err
	}
	name := "project.zip"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = params["filename"]
		}
	}
	return &Archive{Name: name, Body: resp.Body}, nil
}

// String implements fmt.Stringer for log lines.
func (c *Client) String() string {
	return fmt.Sprintf("backend(%s)", c.baseURL.Redacted())
}
