package logging

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// Levels минимальные уровни консоли и файла
type Levels struct {
	Console LogLevel
	File    LogLevel
}

// Opener открывает логгер компонента
type Opener func(component string) (*Logger, error)

// LoggerManager раздаёт логгеры компонентов просмотрщика (viewer, bridge,
// physics). Каждый компонент пишет в свой файл; уровни берутся из общих
// настроек, поверх которых лежат переопределения по компоненту.
type LoggerManager struct {
	mu        sync.Mutex
	open      Opener
	defaults  Levels
	overrides map[string]Levels
	loggers   map[string]*Logger
}

// NewLoggerManager создаёт менеджер; open == nil значит NewLogger
func NewLoggerManager(open Opener, defaults Levels, overrides map[string]Levels) *LoggerManager {
	if open == nil {
		open = NewLogger
	}
	return &LoggerManager{
		open:      open,
		defaults:  defaults,
		overrides: overrides,
		loggers:   make(map[string]*Logger),
	}
}

// LevelsFor уровни компонента с учётом переопределений
func (lm *LoggerManager) LevelsFor(component string) Levels {
	if l, ok := lm.overrides[component]; ok {
		return l
	}
	return lm.defaults
}

// Logger возвращает логгер компонента, создавая его при первом обращении.
// Если файл открыть не удалось, компонент пишет только в stdout.
func (lm *LoggerManager) Logger(component string) *Logger {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l
	}

	l, err := lm.open(component)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ логгер %s без файла: %v\n", component, err)
		l = NewWriterLogger(component, os.Stdout, nil)
	}
	levels := lm.LevelsFor(component)
	l.SetLevels(levels.Console, levels.File)
	lm.loggers[component] = l
	return l
}

// Components отсортированный список открытых компонентов
func (lm *LoggerManager) Components() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// Close закрывает все логгеры; возвращает последнюю ошибку
func (lm *LoggerManager) Close() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, l := range lm.loggers {
		if err := l.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close logger for %s: %w", component, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return lastErr
}
