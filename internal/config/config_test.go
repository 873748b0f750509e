package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultLookahead != 10 {
		t.Errorf("DefaultLookahead = %d, want 10", cfg.DefaultLookahead)
	}
	if cfg.TimelineMaxOccurrences != 500 {
		t.Errorf("TimelineMaxOccurrences = %d, want 500", cfg.TimelineMaxOccurrences)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultLookahead != 10 {
		t.Errorf("DefaultLookahead = %d, want default 10", cfg.DefaultLookahead)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"default_lookahead": 25, "disabled_tools": ["marker_delete"]}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DefaultLookahead != 25 {
		t.Errorf("DefaultLookahead = %d, want 25", cfg.DefaultLookahead)
	}
	// Unset scalar falls back to default.
	if cfg.TimelineMaxOccurrences != 500 {
		t.Errorf("TimelineMaxOccurrences = %d, want default 500", cfg.TimelineMaxOccurrences)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "marker_delete" {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load accepted invalid JSON")
	}
}

func TestMerge(t *testing.T) {
	base := &Config{DefaultLookahead: 10, TimelineMaxOccurrences: 500, DisabledTools: []string{"a"}}
	overlay := &Config{DefaultLookahead: 30, DisabledTools: []string{"b", "a", " "}}

	merged := Merge(base, overlay)

	if merged.DefaultLookahead != 30 {
		t.Errorf("DefaultLookahead = %d, want overlay 30", merged.DefaultLookahead)
	}
	if merged.TimelineMaxOccurrences != 500 {
		t.Errorf("TimelineMaxOccurrences = %d, want base 500", merged.TimelineMaxOccurrences)
	}
	if len(merged.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want deduplicated [a b]", merged.DisabledTools)
	}
}
