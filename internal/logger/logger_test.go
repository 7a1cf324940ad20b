package logger

import (
	"bytes"
	"os"
	"testing"
)

// capture redirects logger output to a buffer and restores the
// defaults when the test ends.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t)

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{
			name: "debug",
			log:  func() { Debug("chunked %s into %d chunks", "notes/inbox.md", 3) },
			want: "[DEBUG] chunked notes/inbox.md into 3 chunks\n",
		},
		{
			name: "info",
			log:  func() { Info("indexed %d documents", 12) },
			want: "[INFO] indexed 12 documents\n",
		},
		{
			name: "warn",
			log:  func() { Warn("embedding provider unreachable") },
			want: "[WARN] embedding provider unreachable\n",
		},
		{
			name: "section",
			log:  func() { Section("Index Build") },
			want: "\n=== Index Build ===\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			SetVerbose(true)

			tt.log()

			if got := buf.String(); got != tt.want {
				t.Errorf("unexpected output: %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("stale plan: %d documents", 2)
	Info("snapshot flushed")
	Warn("vault path missing")
	Section("Search")

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(i int) {
			SetVerbose(true)
			Debug("worker %d finished", i)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
