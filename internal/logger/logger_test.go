package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if want := filepath.Join(logDir, "lifeos.log"); Path() != want {
		t.Errorf("Path() = %q, want %q", Path(), want)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if Logger.GetLevel() != log.WarnLevel {
		t.Errorf("default level = %v, want warn", Logger.GetLevel())
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want log.Level
	}{
		{name: "debug flag wins", cfg: Config{Debug: true, Level: "error"}, want: log.DebugLevel},
		{name: "explicit info", cfg: Config{Level: "info"}, want: log.InfoLevel},
		{name: "explicit error", cfg: Config{Level: "error"}, want: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ConfigDir = t.TempDir()
			if err := Init(tt.cfg); err != nil {
				t.Fatalf("Init() error: %v", err)
			}
			if Logger.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", Logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestInitFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{format: "", want: "WARN"},
		{format: "json", want: `"msg":"disk almost full"`},
		{format: "logfmt", want: `msg="disk almost full"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if err := Init(Config{ConfigDir: t.TempDir(), Format: tt.format}); err != nil {
				t.Fatalf("Init() error: %v", err)
			}
			path := Path()
			Warn("disk almost full", "free", "2%")
			if err := Close(); err != nil {
				t.Fatalf("Close() error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading log file: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("log file %q does not contain %q", data, tt.want)
			}
		})
	}
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	if err := Init(Config{ConfigDir: t.TempDir(), Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(Config{ConfigDir: t.TempDir(), Level: "loud"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Close()
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
	if Path() != "" {
		t.Errorf("Path() = %q before Init", Path())
	}
	if err := Close(); err != nil {
		t.Errorf("Close() before Init: %v", err)
	}
}
