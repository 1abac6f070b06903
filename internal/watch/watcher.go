// Package watch monitors directories for new or modified timesheet exports
// and hands each settled file to a conversion handler.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Config holds the complete watcher configuration.
type Config struct {
	Directories []string `json:"directories"`
	Recursive   bool     `json:"recursive"`
	Debounce    int      `json:"debounceMs"` // Milliseconds a file must stay quiet before processing
	OutDir      string   `json:"outDir,omitempty"`
	Format      string   `json:"format,omitempty"`
}

// Event records what happened to one detected file.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Output    string    `json:"output,omitempty"`
	Status    string    `json:"status"` // "processed", "error"
	Error     string    `json:"error,omitempty"`
}

// Handler converts one file and returns the report path it wrote.
type Handler func(ctx context.Context, path string) (string, error)

// Status represents the current watcher status.
type Status struct {
	Running     bool     `json:"running"`
	Directories []string `json:"directories"`
	EventCount  int      `json:"eventCount"`
	Pending     int      `json:"pending"`
}

// inputExtensions are the timesheet export extensions worth converting.
var inputExtensions = map[string]bool{
	".xlsx": true, ".xlsm": true, ".csv": true,
}

// Watcher monitors directories for file changes and triggers conversions.
type Watcher struct {
	Config  Config
	Logger  *zap.Logger
	Handler Handler
	// Skip reports files the watcher must ignore, such as its own reports.
	Skip func(path string) bool

	mu       sync.Mutex
	events   []Event
	watcher  *fsnotify.Watcher
	debounce map[string]*time.Timer
	inflight sync.WaitGroup
	ctx      context.Context
}

// New creates a new Watcher with the given configuration.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 500
	}

	return &Watcher{
		Config:   config,
		Logger:   zap.NewNop(),
		watcher:  fsw,
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the configured directories. It blocks until the
// context is cancelled, then waits for in-flight conversions to finish.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	for _, dir := range w.Config.Directories {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			w.shutdown()
			return fmt.Errorf("could not resolve %s: %w", dir, err)
		}

		if w.Config.Recursive {
			err = w.addRecursive(absDir)
		} else {
			err = w.watcher.Add(absDir)
		}
		if err != nil {
			w.shutdown()
			return fmt.Errorf("could not watch %s: %w", absDir, err)
		}
	}

	w.Logger.Info("watching for timesheet exports",
		zap.Strings("directories", w.Config.Directories),
		zap.Bool("recursive", w.Config.Recursive),
		zap.Int("debounceMs", w.Config.Debounce))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("stopping watcher")
			return w.shutdown()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.shutdown()
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.shutdown()
			}
			w.Logger.Warn("watch error", zap.Error(err))
		}
	}
}

// shutdown cancels pending debounced work, waits for running handlers and
// releases the underlying watcher.
func (w *Watcher) shutdown() error {
	w.mu.Lock()
	for path, timer := range w.debounce {
		if timer.Stop() {
			w.inflight.Done()
		}
		delete(w.debounce, path)
	}
	w.mu.Unlock()

	w.inflight.Wait()
	return w.watcher.Close()
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	path := event.Name
	if !w.matches(path) {
		return
	}

	// Debounce: exports are often written in several chunks.
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.debounce[path]; ok && timer.Stop() {
		w.inflight.Done()
	}
	w.inflight.Add(1)
	op := event.Op.String()
	var timer *time.Timer
	timer = time.AfterFunc(time.Duration(w.Config.Debounce)*time.Millisecond, func() {
		defer w.inflight.Done()
		w.processFile(path, op, &timer)
	})
	w.debounce[path] = timer
}

// matches reports whether path is a timesheet export the watcher should
// convert.
func (w *Watcher) matches(path string) bool {
	if !inputExtensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~") {
		return false
	}

	if w.Skip != nil && w.Skip(path) {
		return false
	}
	return true
}

func (w *Watcher) processFile(path, operation string, timer **time.Timer) {
	w.mu.Lock()
	if w.debounce[path] == *timer {
		delete(w.debounce, path)
	}
	ctx := w.ctx
	w.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	evt := Event{
		Time:      time.Now(),
		Path:      path,
		Operation: operation,
		Status:    "processed",
	}

	if w.Handler != nil {
		output, err := w.Handler(ctx, path)
		if err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Warn("could not convert timesheet", zap.String("path", path), zap.Error(err))
		} else {
			evt.Output = output
			w.Logger.Info("converted timesheet", zap.String("path", path), zap.String("output", output))
		}
	} else {
		w.Logger.Info("matched timesheet (no handler)", zap.String("path", path))
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		Running:     true,
		Directories: w.Config.Directories,
		EventCount:  len(w.events),
		Pending:     len(w.debounce),
	}
}

// GetEvents returns all recorded events.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}

const pidFile = "watch.pid"

// WritePIDFile writes the current process ID to the PID file in the given directory.
func WritePIDFile(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, pidFile)
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

// ReadPIDFile reads the PID from the PID file.
func ReadPIDFile(dir string) (int, error) {
	path := filepath.Join(dir, pidFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

// RemovePIDFile removes the PID file.
func RemovePIDFile(dir string) error {
	return os.Remove(filepath.Join(dir, pidFile))
}

// SaveConfig writes the watcher config to a JSON file.
func SaveConfig(dir string, config Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "watch-config.json"), data, 0644)
}

// LoadConfig reads the watcher config from a JSON file.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, "watch-config.json"))
	if err != nil {
		return nil, err
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid watch config: %w", err)
	}
	return &config, nil
}
