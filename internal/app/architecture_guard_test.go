package app

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestHandlersGoThroughServices(t *testing.T) {
	t.Parallel()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve current file path")
	}
	baseDir := filepath.Dir(thisFile)
	targetFiles := []string{
		"server_agent.go",
		"server_functions.go",
		"server_hooks.go",
	}
	forbidden := []string{
		"internal/repo",
		"redisstore",
		"mongostore",
		".Register(",
		".Remove(",
		"execErr.Cause.Error()",
		"httptest.NewRecorder(",
	}

	for _, name := range targetFiles {
		path := filepath.Join(baseDir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s failed: %v", name, err)
		}
		content := string(raw)
		for _, pattern := range forbidden {
			if strings.Contains(content, pattern) {
				t.Fatalf("%s should not contain %q", name, pattern)
			}
		}
	}
}
