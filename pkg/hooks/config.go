// Package hooks runs user commands around a bundle export. Hooks live in
// .pitgraph/hooks.yaml in the project directory:
//
//	hooks:
//	  pre-export:
//	    - name: check
//	      command: make check-declarations
//	  post-export:
//	    - name: publish
//	      command: rsync -a "$PITGRAPH_EXPORT_DIR/" web:/srv/pit/
//	      timeout: 2m
//
// Pre-export hooks run before anything is written and by default abort the
// export when they fail. Post-export hooks run after the bundle is complete
// and by default only report failures.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HookPhase says when a hook runs.
type HookPhase string

const (
	PreExport  HookPhase = "pre-export"
	PostExport HookPhase = "post-export"
)

// OnError values.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout applies to hooks without a timeout.
const DefaultTimeout = 30 * time.Second

// Dir and FileName locate the hook config inside a project directory.
const (
	Dir      = ".pitgraph"
	FileName = "hooks.yaml"
)

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"`
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// UnmarshalYAML accepts the timeout as a Go duration ("90s", "2m") or a
// plain number of seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	// Mirrors Hook with Timeout as text.
	var raw struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout"`
		Env     map[string]string `yaml:"env"`
		OnError string            `yaml:"on_error"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*h = Hook{Name: raw.Name, Command: raw.Command, Env: raw.Env, OnError: raw.OnError}
	if raw.Timeout == "" {
		return nil
	}
	if d, err := time.ParseDuration(raw.Timeout); err == nil {
		h.Timeout = d
		return nil
	}
	secs, err := strconv.ParseFloat(raw.Timeout, 64)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: want a duration like 30s or a number of seconds", raw.Timeout)
	}
	h.Timeout = time.Duration(secs * float64(time.Second))
	return nil
}

// HooksByPhase groups hooks by phase, in run order.
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// Config is the content of hooks.yaml.
type Config struct {
	Hooks HooksByPhase `yaml:"hooks" json:"hooks"`
}

// ExportContext is passed to hooks as environment variables.
type ExportContext struct {
	ExportDir      string    // PITGRAPH_EXPORT_DIR
	SnapshotFormat string    // PITGRAPH_SNAPSHOT_FORMAT: svg or png
	NodeCount      int       // PITGRAPH_NODE_COUNT
	FileCount      int       // PITGRAPH_FILE_COUNT, 0 before the export
	Timestamp      time.Time // PITGRAPH_TIMESTAMP, RFC3339
}

// ToEnv returns the context as KEY=value pairs.
func (c ExportContext) ToEnv() []string {
	return []string{
		"PITGRAPH_EXPORT_DIR=" + c.ExportDir,
		"PITGRAPH_SNAPSHOT_FORMAT=" + c.SnapshotFormat,
		"PITGRAPH_NODE_COUNT=" + strconv.Itoa(c.NodeCount),
		"PITGRAPH_FILE_COUNT=" + strconv.Itoa(c.FileCount),
		"PITGRAPH_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Loader reads hooks.yaml from a project directory.
type Loader struct {
	projectDir string
	config     *Config
	warnings   []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithProjectDir sets the directory holding .pitgraph (default: the working
// directory).
func WithProjectDir(dir string) LoaderOption {
	return func(l *Loader) { l.projectDir = dir }
}

// NewLoader returns a loader; call Load before reading hooks.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.projectDir == "" {
		l.projectDir, _ = os.Getwd()
	}
	return l
}

// Path is the hooks file the loader reads.
func (l *Loader) Path() string {
	return filepath.Join(l.projectDir, Dir, FileName)
}

// Load reads and normalizes the hooks file. A missing file means no hooks.
func (l *Loader) Load() error {
	l.warnings = nil
	data, err := os.ReadFile(l.Path())
	if os.IsNotExist(err) {
		l.config = &Config{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", l.Path(), err)
	}
	cfg.Hooks.PreExport = l.normalize(PreExport, cfg.Hooks.PreExport)
	cfg.Hooks.PostExport = l.normalize(PostExport, cfg.Hooks.PostExport)
	l.config = &cfg
	return nil
}

// normalize drops hooks without a command and fills in names, timeouts and
// the phase's on_error default.
func (l *Loader) normalize(phase HookPhase, in []Hook) []Hook {
	onError := OnErrorContinue
	if phase == PreExport {
		onError = OnErrorFail
	}
	var out []Hook
	for i, h := range in {
		if strings.TrimSpace(h.Command) == "" {
			l.warnf("%s hook %d has empty command; skipping", phase, i+1)
			continue
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		if h.Timeout <= 0 {
			h.Timeout = DefaultTimeout
		}
		switch h.OnError {
		case OnErrorFail, OnErrorContinue:
		case "":
			h.OnError = onError
		default:
			l.warnf("%s hook %d: unknown on_error %q; using %q", phase, i+1, h.OnError, onError)
			h.OnError = onError
		}
		out = append(out, h)
	}
	return out
}

func (l *Loader) warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

// Config returns the loaded configuration, empty before Load.
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

// HasHooks reports whether any hook is configured.
func (l *Loader) HasHooks() bool {
	c := l.Config()
	return len(c.Hooks.PreExport)+len(c.Hooks.PostExport) > 0
}

// GetHooks returns the hooks of phase, nil for an unknown phase or before
// Load.
func (l *Loader) GetHooks(phase HookPhase) []Hook {
	if l.config == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return l.config.Hooks.PreExport
	case PostExport:
		return l.config.Hooks.PostExport
	}
	return nil
}

// Warnings returns the problems found by the last Load.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// LoadDefault loads the hooks of the working directory.
func LoadDefault() (*Loader, error) {
	l := NewLoader()
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}
