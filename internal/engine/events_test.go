package engine

import (
	"fmt"
	"strings"
	"testing"
)

func TestEventLogEvictsOldest(t *testing.T) {
	l := newEventLog(eventCapacity)
	for i := 0; i < eventCapacity+20; i++ {
		l.append(fmt.Sprintf("line %d", i))
	}

	if got := l.Len(); got != eventCapacity {
		t.Fatalf("Len = %d, want %d", got, eventCapacity)
	}
	tail := l.Tail(eventCapacity)
	if tail[0] != "line 20" {
		t.Errorf("oldest surviving line = %q, want %q", tail[0], "line 20")
	}
	if last := tail[len(tail)-1]; last != fmt.Sprintf("line %d", eventCapacity+19) {
		t.Errorf("newest line = %q", last)
	}
}

func TestEventLogTailClamps(t *testing.T) {
	l := newEventLog(eventCapacity)
	for i := 0; i < 5; i++ {
		l.append(fmt.Sprintf("line %d", i))
	}

	if got := l.Tail(0); len(got) != 1 || got[0] != "line 4" {
		t.Errorf("Tail(0) = %v, want just the newest line", got)
	}
	if got := l.Tail(-3); len(got) != 1 {
		t.Errorf("Tail(-3) returned %d lines, want 1", len(got))
	}
	if got := l.Tail(1000); len(got) != 5 {
		t.Errorf("Tail(1000) returned %d lines, want all 5", len(got))
	}
}

func TestEventLogTailOrderOldestFirst(t *testing.T) {
	l := newEventLog(eventCapacity)
	l.append("a")
	l.append("b")
	l.append("c")

	got := l.Tail(2)
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("Tail(2) = %v, want [b c]", got)
	}
}

func TestLogEventTimestampsLines(t *testing.T) {
	e := newTestEngine(t, newStubFeed())
	e.logEvent("[cfg] probe")

	lines := e.Events(1)
	if len(lines) != 1 {
		t.Fatalf("Events(1) = %v", lines)
	}
	// "HH:MM:SS [cfg] probe"
	if !strings.HasSuffix(lines[0], " [cfg] probe") {
		t.Errorf("line = %q, want timestamp prefix before message", lines[0])
	}
	if len(lines[0]) != len("15:04:05 [cfg] probe") {
		t.Errorf("line length = %d, want fixed-width timestamp prefix", len(lines[0]))
	}
}

func TestShortMint(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"ABC", "ABC"},
		{"1234567890123", "1234567890123"},
		{"12345678901234", "123456…901234"},
		{"So11111111111111111111111111111111111111112", "So1111…111112"},
	}
	for _, tt := range tests {
		if got := shortMint(tt.in); got != tt.want {
			t.Errorf("shortMint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
