package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/vanderheijden86/pitgraph/pkg/debug"
)

// maxOutput caps the hook output kept in a result.
const maxOutput = 4096

// HookResult records one hook run.
type HookResult struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks of one export.
type Executor struct {
	config  *Config
	context ExportContext
	results []HookResult
}

// NewExecutor returns an executor for config. A nil config runs nothing.
func NewExecutor(config *Config, ctx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, context: ctx}
}

// SetContext replaces the export context, e.g. to report the file count to
// post-export hooks.
func (e *Executor) SetContext(ctx ExportContext) {
	e.context = ctx
}

// RunPreExport runs the pre-export hooks in order. The first failing hook
// with on_error=fail stops the run and its error is returned.
func (e *Executor) RunPreExport() error {
	for _, h := range e.config.Hooks.PreExport {
		r := e.run(h, PreExport)
		if !r.Success && h.OnError == OnErrorFail {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook and returns the errors of those
// with on_error=fail.
func (e *Executor) RunPostExport() error {
	var errs []error
	for _, h := range e.config.Hooks.PostExport {
		r := e.run(h, PostExport)
		if !r.Success && h.OnError == OnErrorFail {
			errs = append(errs, fmt.Errorf("post-export hook %q failed: %w", h.Name, r.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) run(h Hook, phase HookPhase) HookResult {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := shellCommand(ctx, h.Command)
	cmd.Env = append(os.Environ(), e.context.ToEnv()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	r := HookResult{
		Hook:     h,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   truncate(strings.TrimSpace(stdout.String()), maxOutput),
		Stderr:   truncate(strings.TrimSpace(stderr.String()), maxOutput),
		Duration: time.Since(start),
		Error:    err,
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.Success = false
		r.Error = fmt.Errorf("timed out after %s", timeout)
	}
	debug.Log("hooks: %s %q success=%v in %s", phase, h.Name, r.Success, r.Duration)
	e.results = append(e.results, r)
	return r
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// Results returns the runs so far, in order.
func (e *Executor) Results() []HookResult {
	return e.results
}

// Summary describes the runs, one line per hook plus the stderr of the
// failed ones.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range e.results {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Fprintf(&sb, "%s hook %s: %s (%s)\n", r.Phase, r.Hook.Name, status, r.Duration.Round(time.Millisecond))
		if !r.Success {
			if msg := strings.TrimSpace(r.Stderr); msg != "" {
				fmt.Fprintf(&sb, "  %s\n", truncate(msg, 200))
			} else if r.Error != nil {
				fmt.Fprintf(&sb, "  %v\n", r.Error)
			}
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// RunHooks loads the hooks of projectDir. It returns a nil executor when
// noHooks is set or nothing is configured.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	loader := NewLoader(WithProjectDir(projectDir))
	if err := loader.Load(); err != nil {
		return nil, err
	}
	for _, w := range loader.Warnings() {
		debug.Log("hooks: %s", w)
	}
	if !loader.HasHooks() {
		return nil, nil
	}
	return NewExecutor(loader.Config(), ctx), nil
}
