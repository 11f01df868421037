package logger

import "sync"

// components caches per-component loggers so repeated WithComponent lookups
// share one instance and a component's logger can be replaced wholesale.
var components = struct {
	sync.RWMutex
	byName map[string]*Logger
}{byName: make(map[string]*Logger)}

// Register installs a dedicated logger for a component name, replacing the
// one derived from the global logger.
func Register(name string, l *Logger) {
	components.Lock()
	defer components.Unlock()
	components.byName[name] = l
}

// Get returns the logger for a component, deriving and caching one from the
// global logger on first use.
func Get(name string) *Logger {
	components.RLock()
	l, ok := components.byName[name]
	components.RUnlock()
	if ok {
		return l
	}

	components.Lock()
	defer components.Unlock()
	if l, ok := components.byName[name]; ok {
		return l
	}
	l = GetGlobalLogger().WithComponent(name)
	components.byName[name] = l
	return l
}

// resetComponents drops the cache. Init calls it so loggers derived before
// configuration pick up the configured level and format.
func resetComponents() {
	components.Lock()
	defer components.Unlock()
	components.byName = make(map[string]*Logger)
}
