// Package config loads coretermd's YAML configuration and watches it for
// changes, in the style of noppefoxwolf-vibetunnel's pkg/config (a plain
// struct decoded once at startup) combined with amantus-ai-vibetunnel's use
// of fsnotify to react to config edits without a restart.
package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is coretermd's full runtime configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Terminal struct {
		Rows          int  `yaml:"rows"`
		Cols          int  `yaml:"cols"`
		Shell         string `yaml:"shell"`
		ScrollbackKB  int  `yaml:"scrollback_kb"`
		ScrollbackMap bool `yaml:"scrollback_contiguous"`
	} `yaml:"terminal"`

	Auth struct {
		Token string `yaml:"token"`
	} `yaml:"auth"`
}

func defaults() *Config {
	c := &Config{}
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 4501
	c.Terminal.Rows = 24
	c.Terminal.Cols = 80
	c.Terminal.Shell = os.Getenv("SHELL")
	if c.Terminal.Shell == "" {
		c.Terminal.Shell = "/bin/sh"
	}
	c.Terminal.ScrollbackKB = 256
	c.Terminal.ScrollbackMap = true
	return c
}

// Load reads and parses the YAML file at path, falling back to defaults()
// for any field the file doesn't set (yaml.v3 leaves zero values for
// omitted keys, so we decode onto an already-defaulted struct).
func Load(path string) (*Config, error) {
	c := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// Watcher holds the most recently loaded Config and refreshes it whenever
// the backing file changes on disk, following amantus-ai-vibetunnel's
// fsnotify-driven reload pattern. Only fields read through Current are
// live; fields read once at startup (e.g. Server.Port) are not re-applied.
type Watcher struct {
	path    string
	log     *zap.Logger
	current atomic.Pointer[Config]
	fsw     *fsnotify.Watcher
}

// NewWatcher loads path once and starts watching the file for writes.
func NewWatcher(path string, log *zap.Logger) (*Watcher, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{path: path, log: log}
	w.current.Store(c)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: fsnotify: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		// A config file that doesn't exist yet just runs on defaults with no
		// hot reload; that's not fatal.
		log.Warn("config file not watchable, hot reload disabled", zap.String("path", path), zap.Error(err))
		fsw.Close()
		return w, nil
	}
	w.fsw = fsw
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed, keeping previous config", zap.Error(err))
				continue
			}
			w.current.Store(c)
			w.log.Info("config reloaded", zap.String("path", w.path))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Current returns the most recently loaded Config. Safe for concurrent use.
func (w *Watcher) Current() *Config { return w.current.Load() }

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if w.fsw == nil {
		return nil
	}
	return w.fsw.Close()
}
