package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/trezcool/mahudhurio/core"
)

// NewConfig returns the configuration tests run with: no external services, backend at baseURL.
func NewConfig(baseURL string) *core.Config {
	return &core.Config{
		AppName:  "Mahudhurio",
		Env:      "TEST",
		Build:    "test",
		TestMode: true,
		Server: core.ServerConfig{
			Host:           "localhost",
			DisableReqLogs: true,
		},
		Backend: core.BackendConfig{BaseURL: baseURL},
		Report: core.ReportConfig{
			Recipient: "Student <student@test.test>",
			Schedule:  "0 18 * * 0",
		},
	}
}

type Entry struct {
	Level   string
	Message string
	Args    []interface{}
}

// Logger keeps every entry in memory.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Level: level, Message: msg, Args: args})
	l.mu.Unlock()
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("fatal", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}

func (l *Logger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Logged reports whether an entry at level contains substr.
func (l *Logger) Logged(level, substr string) bool {
	for _, e := range l.Entries(level) {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
