package oscproto

import (
	"fmt"
	"testing"
)

func osc697(payload string) string {
	return "\x1b]697;" + payload + "\x07"
}

func TestScannerAssemblesSingleSequence(t *testing.T) {
	var got []string
	h := NewHandler(func(d string) { got = append(got, d) })
	s := NewScanner(h.Feed)

	s.Write([]byte(osc697("NewCmd")))

	if len(got) != 1 || got[0] != "NewCmd" {
		t.Fatalf("expected [%q], got %v", "NewCmd", got)
	}
}

func TestScannerIgnoresOtherOSCCodes(t *testing.T) {
	var got []string
	h := NewHandler(func(d string) { got = append(got, d) })
	s := NewScanner(h.Feed)

	s.Write([]byte("\x1b]0;window title\x07"))

	if len(got) != 0 {
		t.Errorf("expected OSC 0 to be ignored, got %v", got)
	}
}

func TestScannerIgnoresSurroundingPlainBytes(t *testing.T) {
	var got []string
	h := NewHandler(func(d string) { got = append(got, d) })
	s := NewScanner(h.Feed)

	s.Write([]byte("hello " + osc697("StartPrompt") + " world"))

	if len(got) != 1 || got[0] != "StartPrompt" {
		t.Fatalf("expected directive to survive surrounding text, got %v", got)
	}
}

// TestScannerHandlesSequenceSplitAcrossWrites covers the documented
// resumability guarantee: an OSC 697 sequence arriving in multiple PTY
// reads must still assemble into one directive.
func TestScannerHandlesSequenceSplitAcrossWrites(t *testing.T) {
	var got []string
	h := NewHandler(func(d string) { got = append(got, d) })
	s := NewScanner(h.Feed)

	full := osc697("Dir=/home/user/project")
	mid := len(full) / 2
	s.Write([]byte(full[:mid]))
	s.Write([]byte(full[mid:]))

	if len(got) != 1 || got[0] != "Dir=/home/user/project" {
		t.Fatalf("expected assembled directive across writes, got %v", got)
	}
}

func TestScannerTerminatesOnESCBackslash(t *testing.T) {
	var got []string
	h := NewHandler(func(d string) { got = append(got, d) })
	s := NewScanner(h.Feed)

	s.Write([]byte("\x1b]697;EndPrompt\x1b\\"))

	if len(got) != 1 || got[0] != "EndPrompt" {
		t.Fatalf("expected ST-terminated sequence to assemble, got %v", got)
	}
}

func TestScannerDropsOversizedPayload(t *testing.T) {
	var got []string
	h := NewHandler(func(d string) { got = append(got, d) })
	s := NewScanner(h.Feed)

	huge := make([]byte, MaxPayload*2)
	for i := range huge {
		huge[i] = 'x'
	}
	s.Write([]byte("\x1b]697;"))
	s.Write(huge)
	s.Write([]byte("\x07"))

	if len(got) != 1 {
		t.Fatalf("expected exactly one directive, got %d", len(got))
	}
	if len(got[0]) != MaxPayload {
		t.Errorf("expected payload bounded to %d bytes, got %d", MaxPayload, len(got[0]))
	}
}

func TestScannerHandlesBackToBackSequences(t *testing.T) {
	var got []string
	h := NewHandler(func(d string) { got = append(got, d) })
	s := NewScanner(h.Feed)

	s.Write([]byte(osc697("NewCmd") + osc697("StartPrompt") + osc697("EndPrompt")))

	want := []string{"NewCmd", "StartPrompt", "EndPrompt"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
