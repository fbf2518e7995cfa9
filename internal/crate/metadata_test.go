package crate

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMetadataRoundTrip(t *testing.T) {
	meta := LinkMeta{CrateName: "foo", CrateHash: "cafedeadbeef"}
	libs := []NativeLib{
		{Kind: NativeStatic, Name: "z"},
		{Kind: NativeFramework, Name: "CoreFoundation"},
	}
	payload := MetadataFor(meta, libs, []string{"-lm"}, []string{"_ZN3foo4mainE"})

	data, err := EncodeMetadata(payload)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}

	got, err := DecodeMetadata(data)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if got.CrateName != "foo" || got.CrateHash != "cafedeadbeef" {
		t.Fatalf("identity = %q/%q", got.CrateName, got.CrateHash)
	}
	gotLibs := got.NativeLibs()
	if len(gotLibs) != 2 || gotLibs[0] != libs[0] || gotLibs[1] != libs[1] {
		t.Fatalf("NativeLibs = %v", gotLibs)
	}
	if len(got.LinkArgs) != 1 || got.LinkArgs[0] != "-lm" {
		t.Fatalf("LinkArgs = %v", got.LinkArgs)
	}
}

func TestDecodeMetadataRejectsSchemaMismatch(t *testing.T) {
	// EncodeMetadata restamps the schema, so marshal a raw struct to get an
	// unsupported version onto the wire.
	raw := Metadata{Schema: 99, CrateName: "x"}
	data, err := msgpack.Marshal(&raw)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeMetadata(data); err == nil {
		t.Fatal("DecodeMetadata must reject unknown schema versions")
	}
}

func TestFindCrateName(t *testing.T) {
	tests := []struct {
		explicit, manifest, input string
		want                      string
	}{
		{"cli", "pkg", "src/main.o", "cli"},
		{"", "pkg", "src/main.o", "pkg"},
		{"", "", "src/main.o", "main"},
		{"", "", "", "ember-out"},
	}
	for _, tt := range tests {
		if got := FindCrateName(tt.explicit, tt.manifest, tt.input); got != tt.want {
			t.Errorf("FindCrateName(%q,%q,%q) = %q, want %q",
				tt.explicit, tt.manifest, tt.input, got, tt.want)
		}
	}
}

func TestValidateCrateName(t *testing.T) {
	if err := ValidateCrateName("my-crate_2"); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
	for _, bad := range []string{"", "has space", "semi;colon", "dot.name"} {
		if err := ValidateCrateName(bad); err == nil {
			t.Errorf("ValidateCrateName(%q) should fail", bad)
		}
	}
}
