package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// CompiledScript is a script ready to run. It is safe for concurrent use;
// every run works on its own clone.
type CompiledScript struct {
	Script   *Script
	compiled *tengo.Compiled
}

// Output holds the globals of a finished run.
type Output struct {
	ExecutionTime time.Duration
	vars          *tengo.Compiled
}

// StringVar returns a global as a string. ok is false when the script never
// assigned it.
func (o *Output) StringVar(name string) (value string, ok bool) {
	v := o.vars.Get(name)
	if v == nil || v.IsUndefined() {
		return "", false
	}
	if s, isString := v.Value().(string); isString {
		return s, true
	}
	return v.String(), true
}

// Value returns a global converted to a Go value, or nil.
func (o *Output) Value(name string) interface{} {
	v := o.vars.Get(name)
	if v == nil {
		return nil
	}
	return v.Value()
}

// TengoEngine compiles and runs Tengo scripts.
type TengoEngine struct {
	securityLimits SecurityLimits
	logger         *slog.Logger
}

// NewTengoEngine creates a new Tengo engine with default security limits.
func NewTengoEngine() *TengoEngine {
	return &TengoEngine{
		securityLimits: GetDefaultSecurityLimits(),
		logger:         slog.Default().With("component", "script_engine"),
	}
}

// SetSecurityLimits configures resource and security constraints.
func (e *TengoEngine) SetSecurityLimits(limits SecurityLimits) error {
	if limits.MaxExecutionTime <= 0 {
		return errors.New("max execution time must be positive")
	}
	e.securityLimits = limits
	return nil
}

// Compile prepares a script. inputs names the globals the caller sets on
// every run; the script reads them but must not redeclare them.
func (e *TengoEngine) Compile(script *Script, inputs ...string) (*CompiledScript, error) {
	startTime := time.Now()

	tengoScript := tengo.NewScript([]byte(script.Content))
	tengoScript.SetImports(stdlib.GetModuleMap(e.securityLimits.AllowedPackages...))
	if e.securityLimits.MaxAllocs > 0 {
		tengoScript.SetMaxAllocs(e.securityLimits.MaxAllocs)
	}

	for _, name := range inputs {
		if err := tengoScript.Add(name, nil); err != nil {
			return nil, NewScriptError(ErrorTypeCompilation, script.Name, "failed to declare input "+name, err)
		}
	}
	if err := e.addLoggingFunction(tengoScript, script.Name); err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, script.Name, "failed to add logging function", err)
	}

	compiled, err := tengoScript.Compile()
	if err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, script.Name, "failed to compile Tengo script", err)
	}

	e.logger.Debug("Tengo script compiled successfully",
		"script", script.Name,
		"compilation_time", time.Since(startTime),
	)
	return &CompiledScript{Script: script, compiled: compiled}, nil
}

// Execute runs a compiled script with the given inputs.
func (e *TengoEngine) Execute(ctx context.Context, cs *CompiledScript, vars map[string]interface{}) (*Output, error) {
	startTime := time.Now()
	run := cs.compiled.Clone()

	for name, value := range vars {
		if err := run.Set(name, value); err != nil {
			return nil, NewScriptError(ErrorTypeExecution, cs.Script.Name, fmt.Sprintf("failed to set input %s", name), err)
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, e.securityLimits.MaxExecutionTime)
	defer cancel()

	if err := run.RunContext(execCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, NewScriptError(ErrorTypeTimeout, cs.Script.Name, "script execution timed out", err)
		}
		return nil, NewScriptError(ErrorTypeExecution, cs.Script.Name, "script execution failed", err)
	}

	return &Output{ExecutionTime: time.Since(startTime), vars: run}, nil
}

// addLoggingFunction exposes log(msg) to scripts, routed to slog.
func (e *TengoEngine) addLoggingFunction(script *tengo.Script, name string) error {
	logFunc := &tengo.UserFunction{
		Name: "log",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			message, ok := tengo.ToString(args[0])
			if !ok {
				message = args[0].String()
			}
			e.logger.Info("Script log", "message", message, "script", name)
			return tengo.UndefinedValue, nil
		},
	}
	return script.Add("log", logFunc)
}
