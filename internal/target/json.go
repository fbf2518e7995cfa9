package target

import (
	"encoding/json"
	"fmt"
	"os"
)

// specJSON mirrors the on-disk target schema. Optional keys are pointers so
// that absent keys keep the builtin default instead of zeroing it.
type specJSON struct {
	DataLayout     *string `json:"data-layout"`
	LlvmTarget     *string `json:"llvm-target"`
	TargetEndian   *string `json:"target-endian"`
	TargetWordSize *string `json:"target-word-size"`
	Arch           *string `json:"arch"`

	CPU                   *string   `json:"cpu"`
	Linker                *string   `json:"linker"`
	PreLinkArgs           *[]string `json:"pre-link-args"`
	PostLinkArgs          *[]string `json:"post-link-args"`
	Features              *string   `json:"features"`
	DynamicLinking        *bool     `json:"dynamic-linking"`
	Executables           *bool     `json:"executables"`
	DisableStackChecking  *bool     `json:"disable-stack-checking"`
	RelocationModel       *string   `json:"relocation-model"`
	CodeModel             *string   `json:"code-model"`
	DisableRedzone        *bool     `json:"disable-redzone"`
	EliminateFramePointer *bool     `json:"eliminate-frame-pointer"`
	FunctionSections      *bool     `json:"function-sections"`
	DllPrefix             *string   `json:"dll-prefix"`
	DllSuffix             *string   `json:"dll-suffix"`
	ExeSuffix             *string   `json:"exe-suffix"`
	StaticlibPrefix       *string   `json:"staticlib-prefix"`
	StaticlibSuffix       *string   `json:"staticlib-suffix"`
	IsLikeOSX             *bool     `json:"is-like-osx"`
	IsLikeWindows         *bool     `json:"is-like-windows"`
	LinkerIsGnu           *bool     `json:"linker-is-gnu"`
	HasRpath              *bool     `json:"has-rpath"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setList(dst *[]string, src *[]string) {
	if src != nil {
		*dst = append([]string(nil), (*src)...)
	}
}

// FromJSON decodes a target spec document, merges it onto the documented
// defaults and verifies the result.
func FromJSON(data []byte) (*Target, error) {
	var raw specJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse target spec: %w", err)
	}

	base := Default()
	setString(&base.DataLayout, raw.DataLayout)
	setString(&base.LlvmTarget, raw.LlvmTarget)
	setString(&base.TargetEndian, raw.TargetEndian)
	setString(&base.TargetWordSize, raw.TargetWordSize)
	setString(&base.Arch, raw.Arch)

	setString(&base.CPU, raw.CPU)
	setString(&base.Linker, raw.Linker)
	setList(&base.PreLinkArgs, raw.PreLinkArgs)
	setList(&base.PostLinkArgs, raw.PostLinkArgs)
	setString(&base.Features, raw.Features)
	setBool(&base.DynamicLinking, raw.DynamicLinking)
	setBool(&base.Executables, raw.Executables)
	setBool(&base.DisableStackChecking, raw.DisableStackChecking)
	setString(&base.RelocationModel, raw.RelocationModel)
	setString(&base.CodeModel, raw.CodeModel)
	setBool(&base.DisableRedzone, raw.DisableRedzone)
	setBool(&base.EliminateFramePointer, raw.EliminateFramePointer)
	setBool(&base.FunctionSections, raw.FunctionSections)
	setString(&base.DllPrefix, raw.DllPrefix)
	setString(&base.DllSuffix, raw.DllSuffix)
	setString(&base.ExeSuffix, raw.ExeSuffix)
	setString(&base.StaticlibPrefix, raw.StaticlibPrefix)
	setString(&base.StaticlibSuffix, raw.StaticlibSuffix)
	setBool(&base.IsLikeOSX, raw.IsLikeOSX)
	setBool(&base.IsLikeWindows, raw.IsLikeWindows)
	setBool(&base.LinkerIsGnu, raw.LinkerIsGnu)
	setBool(&base.HasRpath, raw.HasRpath)

	return base.Verify()
}

// FromFile loads and verifies a target spec from a JSON file on disk.
func FromFile(path string) (*Target, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from target resolution
	if err != nil {
		return nil, fmt.Errorf("failed to read target spec %s: %w", path, err)
	}
	t, err := FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
