package hooks

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook commands use sh")
	}
}

func writeHooksFile(t *testing.T, dir, content string) {
	t.Helper()
	d := filepath.Join(dir, Dir)
	if err := os.MkdirAll(d, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", Dir, err)
	}
	if err := os.WriteFile(filepath.Join(d, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", FileName, err)
	}
}

func TestExportContextToEnv(t *testing.T) {
	ctx := ExportContext{
		ExportDir:      "/tmp/out",
		SnapshotFormat: "svg",
		NodeCount:      42,
		FileCount:      9,
		Timestamp:      time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC),
	}
	want := []string{
		"PITGRAPH_EXPORT_DIR=/tmp/out",
		"PITGRAPH_SNAPSHOT_FORMAT=svg",
		"PITGRAPH_NODE_COUNT=42",
		"PITGRAPH_FILE_COUNT=9",
		"PITGRAPH_TIMESTAMP=2025-11-30T10:30:00Z",
	}
	got := ctx.ToEnv()
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("env[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoaderNoConfig(t *testing.T) {
	loader := NewLoader(WithProjectDir(t.TempDir()))
	if err := loader.Load(); err != nil {
		t.Fatalf("expected no error for missing config, got: %v", err)
	}
	if loader.HasHooks() {
		t.Error("expected no hooks when config is missing")
	}
}

func TestLoaderWithValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeHooksFile(t, tmpDir, `
hooks:
  pre-export:
    - name: validate
      command: echo "validating"
      timeout: 5s
  post-export:
    - name: publish
      command: echo "done"
      timeout: 10
      env:
        CUSTOM_VAR: custom_value
`)

	loader := NewLoader(WithProjectDir(tmpDir))
	if err := loader.Load(); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !loader.HasHooks() {
		t.Fatal("expected hooks to be loaded")
	}

	pre := loader.GetHooks(PreExport)
	if len(pre) != 1 || pre[0].Name != "validate" {
		t.Fatalf("pre-export hooks = %+v", pre)
	}
	if pre[0].Timeout != 5*time.Second || pre[0].OnError != OnErrorFail {
		t.Errorf("pre-export defaults: timeout %v on_error %q", pre[0].Timeout, pre[0].OnError)
	}

	post := loader.GetHooks(PostExport)
	if len(post) != 1 || post[0].Name != "publish" {
		t.Fatalf("post-export hooks = %+v", post)
	}
	if post[0].Timeout != 10*time.Second {
		t.Errorf("numeric timeout = %v, want 10s", post[0].Timeout)
	}
	if post[0].OnError != OnErrorContinue {
		t.Errorf("post-export on_error = %q", post[0].OnError)
	}
	if post[0].Env["CUSTOM_VAR"] != "custom_value" {
		t.Errorf("env = %v", post[0].Env)
	}
}

func TestLoaderNormalizes(t *testing.T) {
	tmpDir := t.TempDir()
	writeHooksFile(t, tmpDir, `
hooks:
  pre-export:
    - name: empty
      command: "   "
    - command: echo ok
      on_error: sometimes
`)
	loader := NewLoader(WithProjectDir(tmpDir))
	if err := loader.Load(); err != nil {
		t.Fatal(err)
	}
	pre := loader.GetHooks(PreExport)
	if len(pre) != 1 {
		t.Fatalf("got %d hooks, want the empty one dropped", len(pre))
	}
	h := pre[0]
	if h.Name != "pre-export-2" || h.Timeout != DefaultTimeout || h.OnError != OnErrorFail {
		t.Errorf("defaults not applied: %+v", h)
	}
	if len(loader.Warnings()) != 2 {
		t.Errorf("warnings = %v", loader.Warnings())
	}
}

func TestLoaderInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeHooksFile(t, tmpDir, "hooks: [not, a, map")
	if err := NewLoader(WithProjectDir(tmpDir)).Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestHookUnmarshalYAMLInvalidTimeout(t *testing.T) {
	var h Hook
	if err := yaml.Unmarshal([]byte("command: echo\ntimeout: soon\n"), &h); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestLoaderGetHooksUnknownPhase(t *testing.T) {
	loader := NewLoader(WithProjectDir(t.TempDir()))
	if got := loader.GetHooks("pre-export"); got != nil {
		t.Errorf("unloaded loader returned %v", got)
	}
	if err := loader.Load(); err != nil {
		t.Fatal(err)
	}
	if got := loader.GetHooks("mid-export"); got != nil {
		t.Errorf("unknown phase returned %v", got)
	}
}

func TestLoadDefaultUsesCWD(t *testing.T) {
	tmp := t.TempDir()
	writeHooksFile(t, tmp, "hooks:\n  post-export:\n    - command: echo ok\n")
	t.Chdir(tmp)

	loader, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault error: %v", err)
	}
	if !loader.HasHooks() {
		t.Fatal("expected hooks loaded via cwd")
	}
}

func TestExecutorRunSimpleHook(t *testing.T) {
	skipOnWindows(t)
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "hello", Command: "echo hello", Timeout: 5 * time.Second, OnError: OnErrorFail},
	}}}
	executor := NewExecutor(config, ExportContext{})
	if err := executor.RunPreExport(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results := executor.Results()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Success {
		t.Errorf("expected success, got failure: %v", results[0].Error)
	}
	if results[0].Stdout != "hello" {
		t.Errorf("expected stdout 'hello', got %q", results[0].Stdout)
	}
}

func TestRunPreExportStopsOnFail(t *testing.T) {
	skipOnWindows(t)
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "fail", Command: "echo broken >&2; exit 3", Timeout: 5 * time.Second, OnError: OnErrorFail},
		{Name: "never", Command: "echo never", Timeout: 5 * time.Second, OnError: OnErrorFail},
	}}}
	executor := NewExecutor(config, ExportContext{})
	err := executor.RunPreExport()
	if err == nil || !strings.Contains(err.Error(), `"fail"`) {
		t.Fatalf("err = %v", err)
	}
	results := executor.Results()
	if len(results) != 1 {
		t.Fatalf("expected the run to stop after the failure, got %d results", len(results))
	}
	if results[0].Stderr != "broken" {
		t.Errorf("stderr = %q", results[0].Stderr)
	}
	if !strings.Contains(executor.Summary(), "pre-export hook fail: failed") {
		t.Errorf("summary = %q", executor.Summary())
	}
}

func TestRunPreExportContinue(t *testing.T) {
	skipOnWindows(t)
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "soft", Command: "exit 1", Timeout: 5 * time.Second, OnError: OnErrorContinue},
		{Name: "next", Command: "echo still-running", Timeout: 5 * time.Second, OnError: OnErrorFail},
	}}}
	executor := NewExecutor(config, ExportContext{})
	if err := executor.RunPreExport(); err != nil {
		t.Fatalf("expected no error with on_error=continue, got: %v", err)
	}
	results := executor.Results()
	if len(results) != 2 || results[0].Success || results[1].Stdout != "still-running" {
		t.Errorf("results = %+v", results)
	}
}

func TestRunPostExportFailOnErrorStillRunsAll(t *testing.T) {
	skipOnWindows(t)
	config := &Config{Hooks: HooksByPhase{PostExport: []Hook{
		{Name: "fail", Command: "exit 1", Timeout: 5 * time.Second, OnError: OnErrorFail},
		{Name: "after", Command: "echo ok", Timeout: 5 * time.Second, OnError: OnErrorContinue},
	}}}
	executor := NewExecutor(config, ExportContext{})
	if err := executor.RunPostExport(); err == nil {
		t.Fatal("expected error when a post-export hook fails with on_error=fail")
	}
	results := executor.Results()
	if len(results) != 2 || results[1].Stdout != "ok" {
		t.Errorf("results = %+v", results)
	}
}

func TestExecutorHookTimeout(t *testing.T) {
	skipOnWindows(t)
	config := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "slow", Command: "sleep 5", Timeout: 100 * time.Millisecond, OnError: OnErrorFail},
	}}}
	executor := NewExecutor(config, ExportContext{})
	if err := executor.RunPreExport(); err == nil {
		t.Fatal("expected timeout error")
	}
	r := executor.Results()[0]
	if r.Success || !strings.Contains(r.Error.Error(), "timed out") {
		t.Errorf("result = %+v", r)
	}
	if r.Duration < 100*time.Millisecond {
		t.Errorf("duration %v shorter than the timeout", r.Duration)
	}
}

func TestExecutorEnvironment(t *testing.T) {
	skipOnWindows(t)
	config := &Config{Hooks: HooksByPhase{PostExport: []Hook{{
		Name:    "env",
		Command: `echo "$PITGRAPH_EXPORT_DIR $PITGRAPH_FILE_COUNT $EXTRA"`,
		Timeout: 5 * time.Second,
		Env:     map[string]string{"EXTRA": "custom"},
		OnError: OnErrorContinue,
	}}}}
	executor := NewExecutor(config, ExportContext{ExportDir: "/before"})
	executor.SetContext(ExportContext{ExportDir: "/custom/out", FileCount: 99})
	if err := executor.RunPostExport(); err != nil {
		t.Fatal(err)
	}
	if got := executor.Results()[0].Stdout; got != "/custom/out 99 custom" {
		t.Errorf("stdout = %q", got)
	}
}

func TestExecutorNilConfig(t *testing.T) {
	executor := NewExecutor(nil, ExportContext{})
	if err := executor.RunPreExport(); err != nil {
		t.Fatal(err)
	}
	if err := executor.RunPostExport(); err != nil {
		t.Fatal(err)
	}
	if executor.Summary() != "" {
		t.Errorf("summary = %q", executor.Summary())
	}
}

func TestRunHooks(t *testing.T) {
	tmp := t.TempDir()
	exec, err := RunHooks(tmp, ExportContext{}, true)
	if err != nil || exec != nil {
		t.Fatalf("noHooks should short-circuit, got exec=%v err=%v", exec, err)
	}
	exec, err = RunHooks(tmp, ExportContext{}, false)
	if err != nil || exec != nil {
		t.Fatalf("missing config should return nil executor, got exec=%v err=%v", exec, err)
	}

	writeHooksFile(t, tmp, "hooks:\n  pre-export:\n    - name: hello\n      command: echo hi\n")
	exec, err = RunHooks(tmp, ExportContext{NodeCount: 1}, false)
	if err != nil {
		t.Fatalf("RunHooks returned error: %v", err)
	}
	if exec == nil || len(exec.config.Hooks.PreExport) != 1 {
		t.Fatalf("executor not initialized: %+v", exec)
	}
	if len(exec.Results()) != 0 {
		t.Fatal("results should be empty before runs")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdefghijklmnopqrstuvwxyz", 8); got != "abcde..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Errorf("got %q", got)
	}
}
