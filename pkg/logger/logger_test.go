package logger

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestStandardLogger_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	l := log.New(buf, "", 0)
	logger := NewStandardLogger(l)

	logger.Info("pacing %d surfaces", 3)

	output := buf.String()
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected [INFO] prefix, got: %s", output)
	}
	if !strings.Contains(output, "pacing 3 surfaces") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_Warning(t *testing.T) {
	buf := &bytes.Buffer{}
	l := log.New(buf, "", 0)
	logger := NewStandardLogger(l)

	logger.Warning("held %d buffers", 4)

	output := buf.String()
	if !strings.Contains(output, "[WARNING]") {
		t.Errorf("expected [WARNING] prefix, got: %s", output)
	}
	if !strings.Contains(output, "held 4 buffers") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_Close(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewStandardLogger(log.New(buf, "", 0))

	if err := logger.Close(); err != nil {
		t.Errorf("expected nil error from Close, got: %v", err)
	}
	// Close must be safe to call multiple times.
	if err := logger.Close(); err != nil {
		t.Errorf("expected nil error from second Close, got: %v", err)
	}
}

// failCloser is a Logger whose Close always fails, for MultiLogger tests.
type failCloser struct {
	Logger
	err error
}

func (f *failCloser) Close() error { return f.err }

func TestMultiLogger_Broadcast(t *testing.T) {
	buf1 := &bytes.Buffer{}
	buf2 := &bytes.Buffer{}
	m := NewMultiLogger(
		NewStandardLogger(log.New(buf1, "", 0)),
		NewStandardLogger(log.New(buf2, "", 0)),
	)

	m.Error("timer fd: %v", "EBADF")

	for i, buf := range []*bytes.Buffer{buf1, buf2} {
		if !strings.Contains(buf.String(), "timer fd: EBADF") {
			t.Errorf("backend %d missing message, got: %s", i, buf.String())
		}
	}
}

func TestMultiLogger_CloseReturnsFirstError(t *testing.T) {
	errFirst := errors.New("first")
	errSecond := errors.New("second")
	m := NewMultiLogger(
		&failCloser{Logger: Nop(), err: errFirst},
		&failCloser{Logger: Nop(), err: errSecond},
	)

	if err := m.Close(); err != errFirst {
		t.Errorf("expected first close error, got: %v", err)
	}
}
