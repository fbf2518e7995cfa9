// Package diag provides the diagnostic sink for the link stage.
//
// Recoverable problems accumulate in a Bag; the link driver checks for
// accumulated errors at checkpoints (before running an external tool, at the
// end of each artifact build) so that one invocation surfaces as many
// problems as possible. Fatal and Bug stop the run immediately through the
// returned error values.
package diag
