package system

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewProgressOffTerminal(t *testing.T) {
	if p := NewProgress(&bytes.Buffer{}, "node"); p != nil {
		t.Fatalf("expected no progress for a non-terminal writer")
	}
}

func TestProgressEndsLine(t *testing.T) {
	tests := map[string][][2]int64{
		"known total":   {{512, 1024}, {1024, 1024}},
		"unknown total": {{512, -1}, {1024, -1}, {1024, 1024}},
	}
	for name, calls := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			p := newBar(&out, "node")
			for _, c := range calls {
				p(c[0], c[1])
			}
			if !strings.HasSuffix(out.String(), "\n") {
				t.Fatalf("progress line not terminated: %q", out.String())
			}
			if strings.Count(out.String(), "\n") != 1 {
				t.Fatalf("expected exactly one newline: %q", out.String())
			}
		})
	}
}
