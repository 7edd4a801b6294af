// ABOUTME: Tests for config loading, merging and environment handling
// ABOUTME: Uses temp directories for isolated file-based tests

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	global := &Settings{URL: "http://global:8000", Timing: Timing{Poll: 7 * time.Second}}
	project := &Settings{URL: "http://project:8000", Timing: Timing{Liveness: time.Minute}}

	result := merge(global, project)

	if result.URL != "http://project:8000" {
		t.Errorf("URL = %q", result.URL)
	}
	if result.Timing.Poll != 7*time.Second || result.Timing.Liveness != time.Minute {
		t.Errorf("Timing = %+v", result.Timing)
	}
}

func TestMerge_Nil(t *testing.T) {
	t.Parallel()

	if merge(nil, nil) == nil {
		t.Fatal("merge(nil, nil) should return non-nil")
	}
}

func TestMerge_Headers(t *testing.T) {
	t.Parallel()

	global := &Settings{Headers: map[string]string{"A": "1", "B": "2"}}
	project := &Settings{Headers: map[string]string{"B": "override", "C": "3"}}

	result := merge(global, project)
	if result.Headers["A"] != "1" || result.Headers["B"] != "override" || result.Headers["C"] != "3" {
		t.Errorf("Headers = %v", result.Headers)
	}
	if global.Headers["C"] != "" {
		t.Error("merge mutated the base map")
	}
}

func TestLoadFile_YAMLDurations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "url: http://agent:9000\ntiming:\n  heartbeat: 45s\n  reconnect: 1500ms\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := loadFile(path)
	if err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if s.URL != "http://agent:9000" || s.Log.Level != "debug" {
		t.Errorf("settings = %+v", s)
	}
	if s.Timing.Heartbeat != 45*time.Second || s.Timing.Reconnect != 1500*time.Millisecond {
		t.Errorf("timing = %+v", s.Timing)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("url: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_Precedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SEEKDECK_URL", "")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("AGENT_TOKEN", "s3cret")

	if err := os.MkdirAll(filepath.Join(home, ".seekdeck"), 0o700); err != nil {
		t.Fatal(err)
	}
	global := "url: http://global:8000\nheaders:\n  Authorization: Bearer ${AGENT_TOKEN}\n"
	if err := os.WriteFile(filepath.Join(home, ".seekdeck", "config.yaml"), []byte(global), 0o600); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	if err := os.MkdirAll(filepath.Join(project, ".seekdeck"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, ".seekdeck", "config.yaml"),
		[]byte("timing:\n  poll: 2s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(project, "", Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.URL != "http://global:8000" {
		t.Errorf("URL = %q", s.URL)
	}
	if s.Headers["Authorization"] != "Bearer s3cret" {
		t.Errorf("header not expanded: %q", s.Headers["Authorization"])
	}
	if s.Timing.Poll != 2*time.Second || s.Timing.Heartbeat != 30*time.Second {
		t.Errorf("timing = %+v", s.Timing)
	}
	if s.Log.Level != "warn" {
		t.Errorf("LOG_LEVEL not applied: %q", s.Log.Level)
	}

	t.Setenv("SEEKDECK_URL", "http://env:8000")
	s, err = Load(project, "", Overrides{URL: "http://flag:8000"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.URL != "http://flag:8000" {
		t.Errorf("flag did not win: %q", s.URL)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := Load(t.TempDir(), "/nonexistent/seekdeck.yaml", Overrides{}); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	s := Defaults()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	s.ImageProtocol = "sixel"
	if err := s.Validate(); err == nil {
		t.Error("unknown image protocol accepted")
	}
	s = Defaults()
	s.Timing.Poll = -time.Second
	if err := s.Validate(); err == nil {
		t.Error("negative duration accepted")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("SEEKDECK_TEST_HOST", "agent.local")

	if got := expandEnv("http://${SEEKDECK_TEST_HOST}:8000"); got != "http://agent.local:8000" {
		t.Errorf("expandEnv = %q", got)
	}
	if got := expandEnv("${SEEKDECK_UNSET_VAR_XYZ}"); got != "" {
		t.Errorf("unset var = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandHome("~/dl"); got != filepath.Join(home, "dl") {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs"); got != "/abs" {
		t.Errorf("ExpandHome(/abs) = %q", got)
	}
}
