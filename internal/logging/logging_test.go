package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nhle/mailai/internal/model"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mailai.log")

	logger, err := New(model.LogConfig{Path: path, Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("request done", zap.String("op", "emails"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), `"op":"emails"`) {
		t.Errorf("expected JSON field in log, got %s", data)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailai.log")
	if _, err := New(model.LogConfig{Path: path, Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestEmptyPathIsNop(t *testing.T) {
	logger, err := New(model.LogConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("dropped")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/x/y.log"); got != filepath.Join(home, "x/y.log") {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := ExpandHome("/abs/y.log"); got != "/abs/y.log" {
		t.Errorf("absolute path changed: %q", got)
	}
}
