package logger

import "errors"

// MultiLogger fans every message out to several backends, typically the
// console and the daemon log file. Nil backends are skipped.
type MultiLogger struct {
	backends []Logger
}

func NewMultiLogger(backends ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, b := range backends {
		if b != nil {
			m.backends = append(m.backends, b)
		}
	}
	return m
}

func (m *MultiLogger) each(fn func(Logger)) {
	for _, b := range m.backends {
		fn(b)
	}
}

func (m *MultiLogger) Info(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Info(format, args...) })
}

func (m *MultiLogger) Warning(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Warning(format, args...) })
}

func (m *MultiLogger) Error(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Error(format, args...) })
}

// Close closes every backend and joins their errors.
func (m *MultiLogger) Close() error {
	var errs []error
	m.each(func(l Logger) {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

var _ Logger = (*MultiLogger)(nil)
