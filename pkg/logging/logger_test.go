package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "default config", config: DefaultConfig()},
		{name: "debug level", config: Config{Level: "debug", Output: &bytes.Buffer{}}},
		{name: "pretty output", config: Config{Level: "info", Output: &bytes.Buffer{}, Pretty: true}},
		{name: "with caller", config: Config{Level: "info", Output: &bytes.Buffer{}, IncludeCaller: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if New(tt.config) == nil {
				t.Error("expected logger to be created, got nil")
			}
		})
	}
}

func TestLogger_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf})
	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected log to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"level":"INFO"`) {
		t.Errorf("expected log to contain level INFO, got: %s", output)
	}
}

func TestLogger_Debug(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "debug", Output: buf})
	logger.Debug("debug message")

	if !strings.Contains(buf.String(), "debug message") {
		t.Errorf("expected log to contain 'debug message', got: %s", buf.String())
	}
}

func TestLogger_DebugNotLoggedBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf})
	logger.Debug("debug message")

	if buf.String() != "" {
		t.Errorf("expected no output for debug at info level, got: %s", buf.String())
	}
}

func TestLogger_Warn(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "warn", Output: buf})
	logger.Warn("warning message")

	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Errorf("expected log to contain level WARN, got: %s", buf.String())
	}
}

func TestLogger_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "error", Output: buf})
	logger.Error("error message")

	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("expected log to contain level ERROR, got: %s", buf.String())
	}
}

func TestLogger_WithExecutionID(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf}).WithExecutionID("exec-456")
	logger.Info("test")

	if !strings.Contains(buf.String(), `"execution_id":"exec-456"`) {
		t.Errorf("expected log to contain execution_id, got: %s", buf.String())
	}
}

func TestLogger_WithNodeID(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf}).WithNodeID("node-789")
	logger.Info("test")

	if !strings.Contains(buf.String(), `"node_id":"node-789"`) {
		t.Errorf("expected log to contain node_id, got: %s", buf.String())
	}
}

func TestLogger_WithField(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf}).WithField("custom_field", "custom_value")
	logger.Info("test")

	if !strings.Contains(buf.String(), `"custom_field":"custom_value"`) {
		t.Errorf("expected log to contain custom_field, got: %s", buf.String())
	}
}

func TestLogger_WithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf}).WithFields(map[string]interface{}{
		"field1": "value1",
		"field2": 42,
	})
	logger.Info("test")

	output := buf.String()
	if !strings.Contains(output, `"field1":"value1"`) {
		t.Errorf("expected log to contain field1, got: %s", output)
	}
	if !strings.Contains(output, `"field2":42`) {
		t.Errorf("expected log to contain field2, got: %s", output)
	}
}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestLogger_WithError(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "error", Output: buf}).WithError(&testError{"test error"})
	logger.Error("error occurred")

	if !strings.Contains(buf.String(), "test error") {
		t.Errorf("expected log to contain error message, got: %s", buf.String())
	}
}

func TestLogger_ChainedContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf}).
		WithExecutionID("exec-456").
		WithNodeID("node-789")
	logger.Info("test")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log JSON: %v", err)
	}

	expected := map[string]string{
		"execution_id": "exec-456",
		"node_id":      "node-789",
		"level":        "INFO",
		"msg":          "test",
	}
	for key, want := range expected {
		got, ok := entry[key]
		if !ok {
			t.Errorf("expected field %s in log, got: %v", key, entry)
		} else if got != want {
			t.Errorf("expected %s=%s, got %s=%v", key, want, key, got)
		}
	}
}

func TestLogger_WithContext(t *testing.T) {
	logger := New(DefaultConfig())
	ctx := logger.WithContext(context.Background())

	if FromContext(ctx) == nil {
		t.Error("expected logger from context, got nil")
	}
}

func TestLogger_FromContextDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("expected default logger, got nil")
	}
}

func TestLogger_Infof(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf})
	logger.Infof("formatted message: %s %d", "test", 42)

	if !strings.Contains(buf.String(), "formatted message: test 42") {
		t.Errorf("expected formatted message, got: %s", buf.String())
	}
}

func TestLogger_Errorf(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "error", Output: buf})
	logger.Errorf("error: %d", 500)

	if !strings.Contains(buf.String(), "error: 500") {
		t.Errorf("expected formatted error message, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct{ input, expected string }{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"invalid", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input).String(); got != tt.expected {
				t.Errorf("parseLevel(%s) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Output: buf})
	logger.Info("test message")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Errorf("log output is not valid JSON: %v", err)
	}
}

func TestAdapter_ImplementsObserverLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	adapter := NewAdapter(New(Config{Level: "info", Output: buf}))
	adapter.Info("hello", map[string]interface{}{"k": "v"})

	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("expected adapter to forward fields, got: %s", buf.String())
	}
}
