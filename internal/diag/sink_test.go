package diag

import (
	"strings"
	"testing"
)

func TestSinkAccumulatesErrors(t *testing.T) {
	var out strings.Builder
	sink := NewSink(&out, 16, false)

	sink.Err(CfgBadRelocationModel, "foo is not a valid relocation mode")
	sink.Err(CfgBadCodeModel, "bar is not a valid code model")
	sink.Warn(LinkNativeArtifacts, "something to keep in mind")

	if !sink.HasErrors() {
		t.Fatal("sink should report errors")
	}
	if got := sink.Bag().ErrorCount(); got != 2 {
		t.Fatalf("ErrorCount = %d, want 2", got)
	}
	err := sink.AbortIfErrors()
	if err == nil {
		t.Fatal("AbortIfErrors must return an error after Err")
	}
	if !IsFatal(err) {
		t.Fatalf("AbortIfErrors error should be fatal, got %T", err)
	}
	if !strings.Contains(err.Error(), "2 previous errors") {
		t.Fatalf("unexpected abort message: %q", err.Error())
	}
}

func TestSinkCleanCheckpoint(t *testing.T) {
	sink := NewSink(nil, 4, false)
	sink.Warn(LinkNativeArtifacts, "warnings do not abort")
	sink.Note(LinkNativeArtifacts, "neither do notes")
	if err := sink.AbortIfErrors(); err != nil {
		t.Fatalf("AbortIfErrors = %v, want nil", err)
	}
}

func TestFatalAndBugTerminate(t *testing.T) {
	sink := NewSink(nil, 4, false)

	err := sink.Fatal(IONotWriteable, "output file %s is not writeable", "/x")
	if !IsFatal(err) {
		t.Fatalf("Fatal should produce a fatal error, got %T", err)
	}

	err = sink.Bug("statics shouldn't be propagated")
	if !IsFatal(err) {
		t.Fatalf("Bug should produce a fatal error, got %T", err)
	}
	if !strings.Contains(err.Error(), "internal error") {
		t.Fatalf("Bug error should carry the internal error prefix: %q", err.Error())
	}
}

func TestBagCapacity(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(Diagnostic{Severity: SevError}) {
		t.Fatal("first add should fit")
	}
	if !bag.Add(Diagnostic{Severity: SevError}) {
		t.Fatal("second add should fit")
	}
	if bag.Add(Diagnostic{Severity: SevError}) {
		t.Fatal("third add should be dropped")
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
}
