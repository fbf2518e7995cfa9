package link

// argGroup names one slot in the fixed link-line layout. The linker
// resolves symbols left to right, so the final argument order is a
// contract: reordering groups breaks symbol resolution.
type argGroup int

const (
	groupPre argGroup = iota
	groupOutput
	groupEarly
	groupCrates
	groupLocalNative
	groupUpstreamNative
	groupLate
	groupUser
	groupPost

	numArgGroups
)

// linkArgs accumulates linker arguments into named groups so that
// contributors can run in any order while the emitted line stays fixed.
type linkArgs struct {
	groups [numArgGroups][]string
}

func (a *linkArgs) add(g argGroup, args ...string) {
	a.groups[g] = append(a.groups[g], args...)
}

// finalize concatenates the groups in layout order.
func (a *linkArgs) finalize() []string {
	var n int
	for _, g := range a.groups {
		n += len(g)
	}
	out := make([]string, 0, n)
	for _, g := range a.groups {
		out = append(out, g...)
	}
	return out
}
