package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/nfrund/plug/internal/chat"
)

// Globals shared with reply scripts.
const (
	// InputMessage holds the visitor's message text.
	InputMessage = "message"
	// OutputReply is the variable the script assigns its answer to.
	OutputReply = "reply"
)

// Responder answers chat messages by running a Tengo script, e.g.
//
//	text := import("text")
//	reply := text.contains(message, "hello") ? "Hi there!" : "Tell me more."
type Responder struct {
	fs     afero.Fs
	path   string
	engine *TengoEngine
	logger *slog.Logger

	mu       sync.RWMutex
	compiled *CompiledScript
}

// NewResponder loads and compiles the script at path.
func NewResponder(fs afero.Fs, path string, engine *TengoEngine) (*Responder, error) {
	if engine == nil {
		engine = NewTengoEngine()
	}
	r := &Responder{
		fs:     fs,
		path:   path,
		engine: engine,
		logger: slog.Default().With("component", "script_responder", "script", path),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reads and recompiles the script. On failure the previous version
// stays active.
func (r *Responder) Reload() error {
	content, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return NewScriptError(ErrorTypeNotFound, r.path, "failed to read script", err)
	}
	s := &Script{Name: filepath.Base(r.path), Content: string(content)}
	if info, err := r.fs.Stat(r.path); err == nil {
		s.LastModified = info.ModTime()
	}

	compiled, err := r.engine.Compile(s, InputMessage)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.compiled = compiled
	r.mu.Unlock()
	r.logger.Info("Reply script loaded", "size", len(content))
	return nil
}

// Reply implements chat.Responder.
func (r *Responder) Reply(ctx context.Context, msg chat.Message) (string, error) {
	r.mu.RLock()
	compiled := r.compiled
	r.mu.RUnlock()

	out, err := r.engine.Execute(ctx, compiled, map[string]interface{}{
		InputMessage: msg.Text,
	})
	if err != nil {
		return "", err
	}

	reply, ok := out.StringVar(OutputReply)
	if !ok {
		return "", NewScriptError(ErrorTypeInvalidResult, compiled.Script.Name, fmt.Sprintf("script did not assign %q", OutputReply), nil)
	}
	return reply, nil
}

// Watch reloads the script whenever its file changes, until ctx is done.
// It only works for scripts on the OS filesystem.
func (r *Responder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create script watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files, so watch the directory rather than the file.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch %s: %w", r.path, err)
	}
	target := filepath.Clean(r.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := r.Reload(); err != nil {
				r.logger.Error("Failed to reload reply script, keeping previous version", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("Script watcher error", "error", err)
		}
	}
}
