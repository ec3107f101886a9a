package db

import (
	"strings"
	"testing"
)

func TestNilIfEmpty(t *testing.T) {
	if nilIfEmpty("") != nil {
		t.Fatalf("empty string must map to NULL")
	}
	got := nilIfEmpty("remote")
	if got == nil || *got != "remote" {
		t.Fatalf("non-empty string must round-trip, got %v", got)
	}
}

func TestNilIfZero(t *testing.T) {
	if nilIfZero(0) != nil {
		t.Fatalf("zero must map to NULL")
	}
	got := nilIfZero(500)
	if got == nil || *got != 500 {
		t.Fatalf("non-zero must round-trip, got %v", got)
	}
}

func TestEmptyIfNil(t *testing.T) {
	// nil requirements must still serialize as a JSON array, never null.
	got := emptyIfNil(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("nil slice must become empty slice, got %#v", got)
	}
	items := []string{"board experience"}
	if len(emptyIfNil(items)) != 1 {
		t.Fatalf("non-nil slice must pass through")
	}
}

func TestColumnListsMatchScanners(t *testing.T) {
	// scanGeneric and scanSpeaking scan positionally; the column lists
	// must stay in lockstep with the destination counts.
	if n := len(strings.Split(opportunityCols, ",")); n != 17 {
		t.Fatalf("opportunityCols has %d columns, scanner expects 17", n)
	}
	if n := len(strings.Split(speakingCols, ",")); n != 21 {
		t.Fatalf("speakingCols has %d columns, scanner expects 21", n)
	}
}
