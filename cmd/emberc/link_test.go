package main

import (
	"testing"

	"ember/internal/crate"
)

func TestFillFromMetadata(t *testing.T) {
	blob, err := crate.EncodeMetadata(&crate.Metadata{
		CrateName:      "dep",
		CrateHash:      "beefcafe",
		NativeLibKinds: []uint8{uint8(crate.NativeUnknown)},
		NativeLibNames: []string{"m"},
		LinkArgs:       []string{"-lz"},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	data := crate.Data{Name: "dep"}
	fillFromMetadata(&data, blob)

	if data.Hash != "beefcafe" {
		t.Errorf("hash = %q, want %q", data.Hash, "beefcafe")
	}
	if len(data.NativeLibs) != 1 || data.NativeLibs[0].Name != "m" {
		t.Errorf("native libs = %v, want one entry named m", data.NativeLibs)
	}
	if len(data.LinkArgs) != 1 || data.LinkArgs[0] != "-lz" {
		t.Errorf("link args = %v, want [-lz]", data.LinkArgs)
	}
	if len(data.Metadata) == 0 {
		t.Error("metadata blob was not retained")
	}
}

func TestFillFromMetadataBadBlob(t *testing.T) {
	data := crate.Data{Name: "dep"}
	fillFromMetadata(&data, []byte("not msgpack"))
	if data.Hash != "" || data.Metadata != nil {
		t.Errorf("garbage blob should leave the record untouched, got %+v", data)
	}
}
