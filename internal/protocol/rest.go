// ABOUTME: REST payload shapes for the agent backend
// ABOUTME: Flag accepts the backend's "true"/"false" strings as well as JSON booleans

package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Flag is a boolean the backend sometimes encodes as a string.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			*f = false
			return nil
		}
		*f = Flag(b)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("flag: %w", err)
	}
	*f = Flag(b)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Answer is the shape of /latest_answer and /query responses.
type Answer struct {
	Done      Flag   `json:"done"`
	Answer    string `json:"answer"`
	Reasoning string `json:"reasoning"`
	AgentName string `json:"agent_name"`
	Success   Flag   `json:"success"`
	Status    string `json:"status"`
	UID       string `json:"uid"`
}

// Query is the POST /query body.
type Query struct {
	Query      string `json:"query"`
	TTSEnabled bool   `json:"tts_enabled"`
}

// Health is the /health response.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Healthy reports whether the backend is fully initialised.
func (h Health) Healthy() bool {
	return h.Status == "healthy"
}

// FileContent is the GET /api/file-content response.
type FileContent struct {
	File      string `json:"file"`
	Content   string `json:"content"`
	Size      int64  `json:"size"`
	Truncated bool   `json:"truncated"`
}

// SaveRequest is the PUT /api/file-content body.
type SaveRequest struct {
	Content string `json:"content"`
}

// SaveResult is the PUT /api/file-content response.
type SaveResult struct {
	Status string `json:"status"`
	File   string `json:"file"`
	Size   int64  `json:"size"`
}

// PreviewFiles is the /api/preview-files response.
type PreviewFiles struct {
	Files      []string `json:"files"`
	AllFiles   []string `json:"all_files"`
	Total      int      `json:"total"`
	TotalAll   int      `json:"total_all"`
	MainFile   string   `json:"main_file"`
	PreviewURL string   `json:"preview_url"`
}

// ProjectFile is one entry of /api/project-files.
type ProjectFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ProjectFiles is the /api/project-files response.
type ProjectFiles struct {
	Files []ProjectFile `json:"files"`
	Total int           `json:"total"`
}

// Provider describes one model provider.
type Provider struct {
	Name      string   `json:"name"`
	Models    []string `json:"models"`
	Server    string   `json:"server,omitempty"`
	APIKeyEnv string   `json:"api_key_env,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// ModelConfig is the /api/config/models response.
type ModelConfig struct {
	CurrentProvider string              `json:"current_provider"`
	CurrentModel    string              `json:"current_model"`
	Providers       map[string]Provider `json:"providers"`
}

// ModelUpdate is the POST /api/config/update body.
type ModelUpdate struct {
	ProviderName string `json:"provider_name"`
	Model        string `json:"model"`
}

// ErrorBody is the generic {"error": "..."} response.
type ErrorBody struct {
	Error string `json:"error"`
}

const previewPrefix = "/api/preview/"

// PreviewFileFromURL extracts the artifact path from a preview URL such as
// "/api/preview/site/index.html". It returns "" when the URL does not point
// at the preview route.
func PreviewFileFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}
	idx := strings.Index(path, previewPrefix)
	if idx < 0 {
		return ""
	}
	return path[idx+len(previewPrefix):]
}
