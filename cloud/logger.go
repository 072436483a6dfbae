/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cloud

import (
	"log"
	"os"
	"sync"

	"github.com/dc0d/onexit"
)

// Logger is the narrow surface this core needs; DBCloud never requires more
// than leveled printf-style logging.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type stdLogger struct {
	l *log.Logger
}

func (s *stdLogger) Infof(format string, args ...interface{})  { s.l.Printf("[INFO] "+format, args...) }
func (s *stdLogger) Warnf(format string, args ...interface{})  { s.l.Printf("[WARN] "+format, args...) }
func (s *stdLogger) Errorf(format string, args ...interface{}) { s.l.Printf("[ERROR] "+format, args...) }

// NewDefaultLogger wraps the stdlib logger the way the rest of the pack
// does (no structured logging library anywhere in the teacher's module
// graph); this is the logger installed when an opener doesn't supply one.
func NewDefaultLogger() Logger {
	return &stdLogger{l: log.New(os.Stderr, "dbcloud: ", log.LstdFlags)}
}

var (
	processLoggerOnce sync.Once
	processLogger     Logger
)

// ensureLogger installs the process-wide default logger exactly once,
// mirroring storage/settings.go's process-wide Settings/trace singleton.
func ensureLogger(provided Logger) Logger {
	if provided != nil {
		return provided
	}
	processLoggerOnce.Do(func() {
		processLogger = NewDefaultLogger()
	})
	return processLogger
}

// registerExitFlush installs a last-resort onexit hook that best-effort
// flushes a just-opened database if the process exits without an explicit
// Close(). It never panics and never blocks longer than the flush itself.
func registerExitFlush(db *DBCloud) {
	onexit.Register(func() {
		defer func() { recover() }()
		db.flushOnExit()
	})
}
