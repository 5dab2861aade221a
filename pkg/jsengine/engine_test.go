package jsengine

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
)

func TestNew(t *testing.T) {
	engine := New(nil, 0)
	if engine == nil || engine.runtime == nil {
		t.Fatal("expected runtime to be initialized")
	}
	if engine.timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %s", engine.timeout)
	}
}

func TestEvalBool_Expressions(t *testing.T) {
	engine := New(nil, 0)

	tests := []struct {
		name   string
		script string
	}{
		{"arithmetic", "1 + 2 === 3"},
		{"string concat", "'hello' + ' ' + 'world' === 'hello world'"},
		{"null coalescing", "(null ?? 'default') === 'default'"},
		{"json helper", "json('{\"lang\":\"es\"}').lang === 'es'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := engine.EvalBool(tt.script)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Errorf("expected %s to be true", tt.script)
			}
		})
	}
}

func TestJSONHelper_NonBMPText(t *testing.T) {
	engine := New(nil, 0)
	engine.SetVariable("raw", "{\"text\":\"\U0010ffff \U0001F600\"}")

	ok, err := engine.EvalBool("json(raw).text.codePointAt(0) === 0x10ffff && json(raw).text.length === 5")
	if err != nil {
		t.Fatalf("json() rejected valid JSON: %v", err)
	}
	if !ok {
		t.Error("json() did not round-trip astral characters")
	}
}

func TestJSONHelper_InvalidJSON(t *testing.T) {
	engine := New(nil, 0)
	if _, err := engine.EvalBool("json('{not json')"); err == nil {
		t.Error("expected invalid JSON error")
	}
}

func TestEvalBool_SyntaxError(t *testing.T) {
	engine := New(nil, 0)
	if _, err := engine.EvalBool("1 +"); err == nil {
		t.Error("expected syntax error")
	}
}

func TestEvalBool_Timeout(t *testing.T) {
	engine := New(nil, 20*time.Millisecond)

	_, err := engine.EvalBool("while (true) {}")
	if err == nil {
		t.Fatal("expected interrupt")
	}
	if !strings.Contains(err.Error(), "script exceeded 20ms") {
		t.Errorf("unexpected error %v", err)
	}

	// The runtime stays usable after an interrupt
	if ok, err := engine.EvalBool("'ok' === 'ok'"); err != nil || !ok {
		t.Errorf("expected true after interrupt, got %v (%v)", ok, err)
	}
}

func TestEvalBool(t *testing.T) {
	engine := New(nil, 0)
	engine.SetVariable("result", "Hola")

	tests := []struct {
		script string
		want   bool
	}{
		{"result.length > 0", true},
		{"result === 'Hello'", false},
		{"result", true},
		{"''", false},
	}
	for _, tt := range tests {
		got, err := engine.EvalBool(tt.script)
		if err != nil {
			t.Fatalf("%s: %v", tt.script, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.script, tt.want, got)
		}
	}
}

func TestConsoleRoutesToLogger(t *testing.T) {
	var buf bytes.Buffer
	log, _ := logger.New(logger.Options{Console: &buf})
	engine := New(log, 0)

	if _, err := engine.EvalBool("console.log('result is', 42); console.warn('careful')"); err != nil {
		t.Fatalf("EvalBool failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "INFO - js: result is 42") {
		t.Errorf("expected console.log in logger, got %q", out)
	}
	if !strings.Contains(out, "WARN - js: careful") {
		t.Errorf("expected console.warn in logger, got %q", out)
	}
}

func TestCheckTranslation(t *testing.T) {
	tests := []struct {
		name        string
		expectation string
		result      string
		wantErr     error
	}{
		{"default accepts text", "", "Hola", nil},
		{"default rejects blank", "", "   ", core.ErrExpectationFailed},
		{"custom passes", "result !== input", "Hola", nil},
		{"custom fails", "result === input", "Hola", core.ErrExpectationFailed},
		{"invalid script", "result ===", "Hola", core.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(nil, 0).CheckTranslation(tt.expectation, "Hello", tt.result)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckTranslation_Details(t *testing.T) {
	err := New(nil, 0).CheckTranslation("false", "Hello", "Hola")

	var ee *core.ExecutionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExecutionError, got %T", err)
	}
	if ee.Details["result"] != "Hola" || ee.Details["input"] != "Hello" {
		t.Errorf("unexpected details %v", ee.Details)
	}
}
