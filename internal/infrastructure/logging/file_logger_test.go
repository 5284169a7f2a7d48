package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/infrastructure/logging"
)

func TestFileLoggerLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := logging.NewFileLogger(path, "warning", 10, true)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warning("warning %d", 3)
	logger.Error("error %d", 4)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Contains(content, "debug 1") || strings.Contains(content, "info 2") {
		t.Errorf("Expected debug/info to be filtered, got:\n%s", content)
	}
	if !strings.Contains(content, "[WARNING] warning 3") || !strings.Contains(content, "[ERROR] error 4") {
		t.Errorf("Expected warning and error lines, got:\n%s", content)
	}
}

func TestFileLoggerDisabled(t *testing.T) {
	logger, err := logging.NewFileLogger("unused.log", "info", 10, false)
	if err != nil || logger != nil {
		t.Fatalf("Expected nil logger without error, got %v, %v", logger, err)
	}
}

func TestFileLoggerRotatesLargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, make([]byte, 1024*1024+1), 0644); err != nil {
		t.Fatal(err)
	}

	logger, err := logging.NewFileLogger(path, "info", 1, true)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("Expected rotated file: %v", err)
	}
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(f string, a ...interface{})   { r.lines = append(r.lines, "DEBUG") }
func (r *recordingLogger) Info(f string, a ...interface{})    { r.lines = append(r.lines, "INFO") }
func (r *recordingLogger) Warning(f string, a ...interface{}) { r.lines = append(r.lines, "WARNING") }
func (r *recordingLogger) Error(f string, a ...interface{})   { r.lines = append(r.lines, "ERROR") }
func (r *recordingLogger) Success(f string, a ...interface{}) { r.lines = append(r.lines, "SUCCESS") }
func (r *recordingLogger) Close() error                       { return nil }

func TestLogNotifierMapsKinds(t *testing.T) {
	rec := &recordingLogger{}
	n := logging.NewLogNotifier(rec)

	n.Notify(entities.Notice{Kind: entities.NoticeInfo})
	n.Notify(entities.Notice{Kind: entities.NoticeSuccess})
	n.Notify(entities.Notice{Kind: entities.NoticeWarning})
	n.Notify(entities.Notice{Kind: entities.NoticeError})

	want := []string{"INFO", "SUCCESS", "WARNING", "ERROR"}
	if strings.Join(rec.lines, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, rec.lines)
	}
}
