// Package jsengine evaluates JavaScript expectations against translation
// results.
package jsengine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
)

// DefaultExpectation accepts any non-blank result.
const DefaultExpectation = "result.trim().length > 0"

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 5 * time.Second

// Engine wraps a goja runtime.
type Engine struct {
	runtime *goja.Runtime
	log     *logger.Logger
	timeout time.Duration
	mu      sync.Mutex
}

// New creates a new JS engine instance. A nil logger discards console
// output; a timeout <= 0 uses DefaultTimeout.
func New(log *logger.Logger, timeout time.Duration) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	e := &Engine{
		runtime: goja.New(),
		log:     log,
		timeout: timeout,
	}
	e.setupConsole()
	e.runtime.Set("json", e.jsonFunc())
	return e
}

// setupConsole routes console.log, console.warn and console.error to the logger.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(logf func(string, ...interface{})) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = fmt.Sprint(arg.Export())
			}
			logf("js: %s", strings.Join(parts, " "))
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc(e.log.Info))
	console.Set("warn", makeConsoleFunc(e.log.Warn))
	console.Set("error", makeConsoleFunc(e.log.Error))
	e.runtime.Set("console", console)
}

// jsonFunc returns the json() helper function
func (e *Engine) jsonFunc() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("json requires 1 argument"))
		}

		parse, ok := goja.AssertFunction(e.runtime.Get("JSON").ToObject(e.runtime).Get("parse"))
		if !ok {
			panic(e.runtime.NewTypeError("JSON.parse is not a function"))
		}
		result, err := parse(goja.Undefined(), e.runtime.ToValue(call.Arguments[0].String()))
		if err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("invalid JSON: %v", err)))
		}

		return result
	}
}

// SetVariable sets a variable accessible in JS as a global
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runtime.Set(name, value)
}

// SetVariables sets multiple variables
func (e *Engine) SetVariables(vars map[string]interface{}) {
	for k, v := range vars {
		e.SetVariable(k, v)
	}
}

// EvalBool evaluates a JavaScript expression using JS truthiness. Scripts
// running past the engine timeout are interrupted.
func (e *Engine) EvalBool(script string) (bool, error) {
	result, err := e.run(script)
	if err != nil {
		return false, err
	}
	return result.ToBoolean(), nil
}

func (e *Engine) run(script string) (goja.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	timer := time.AfterFunc(e.timeout, func() {
		e.runtime.Interrupt(fmt.Sprintf("script exceeded %s", e.timeout))
	})
	defer func() {
		timer.Stop()
		e.runtime.ClearInterrupt()
	}()

	result, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}
	return result, nil
}

// CheckTranslation evaluates expectation with input and result bound as
// globals. A falsy outcome returns an error matching core.ErrExpectationFailed.
// An empty expectation uses DefaultExpectation.
func (e *Engine) CheckTranslation(expectation, input, result string) error {
	if strings.TrimSpace(expectation) == "" {
		expectation = DefaultExpectation
	}
	e.SetVariables(map[string]interface{}{
		"input":  input,
		"result": result,
	})

	ok, err := e.EvalBool(expectation)
	if err != nil {
		return core.ErrInvalidConfig.WithMessage("invalid expectation: " + expectation).WithCause(err)
	}
	if !ok {
		return core.ErrExpectationFailed.WithDetails(map[string]interface{}{
			"expectation": expectation,
			"input":       input,
			"result":      result,
		}).WithMessage(fmt.Sprintf("translation %q of %q did not satisfy %s", result, input, expectation))
	}
	return nil
}
