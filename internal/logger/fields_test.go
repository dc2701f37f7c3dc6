package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestStringFieldsSkipsEmptyEntries(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "  ", Value: "ignored"},
		StringField{Key: "source", Value: "  remotive  "},
		StringField{Key: "cycle_id", Value: ""},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "source" {
		t.Fatalf("expected source field, got %q", fields[0].Key)
	}
	if fields[0].String != "remotive" {
		t.Fatalf("expected trimmed value, got %q", fields[0].String)
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	if got := WithFields(nil); got == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestCycleFields(t *testing.T) {
	t.Parallel()

	fields := CycleFields("abc-123", "hackernews")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	want := []zap.Field{
		zap.String(FieldCycle, "abc-123"),
		zap.String(FieldSource, "hackernews"),
	}
	for i, field := range fields {
		if field.Key != want[i].Key || field.String != want[i].String {
			t.Fatalf("field %d mismatch: got %v", i, field)
		}
	}

	if got := CycleFields("abc-123", ""); len(got) != 1 {
		t.Fatalf("expected source to be omitted, got %d fields", len(got))
	}
}
