package link

import (
	"path/filepath"

	"ember/internal/crate"
	"ember/internal/diag"
)

// CrateLink is one upstream crate's contribution to the native link
// line, already resolved to concrete linker arguments.
type CrateLink struct {
	// Dynamic selects -L Dir -lName over a literal archive path.
	Dynamic bool
	Path    string
	Dir     string
	Name    string
}

// planUpstreamCrates walks the crate store in link order and resolves
// each crate's linkage for the requested output kind. Crates the format
// resolver marked not-needed never reach the link line. Under LTO,
// statically linked rlibs are rewritten in the scratch dir first.
func (d *Driver) planUpstreamCrates(kind crate.ArtifactKind, scratch string) ([]CrateLink, error) {
	sess := d.Sess
	formats := sess.Formats[kind]
	var links []CrateLink
	for i, cr := range sess.Cstore.Used() {
		if i >= len(formats) {
			break
		}
		switch formats[i] {
		case crate.LinkageNotNeeded:
			continue

		case crate.LinkageStatic:
			if cr.Source.RlibPath == "" {
				sess.Diags.Err(diag.IOMissingRlib, "could not find rlib for: `%s`", cr.Name)
				continue
			}
			path := cr.Source.RlibPath
			if sess.LTO() {
				doctored, include, err := d.ltoRelinkArchive(scratch, cr)
				if err != nil {
					return nil, err
				}
				if !include {
					continue
				}
				path = doctored
			}
			links = append(links, CrateLink{Path: path})

		case crate.LinkageDynamic:
			if sess.LTO() {
				return nil, sess.Diags.Bug(
					"both LTO and dynamic linking requested for `%s`", cr.Name)
			}
			if cr.Source.DylibPath == "" {
				sess.Diags.Err(diag.IOMissingRlib,
					"could not find dynamic library for: `%s`", cr.Name)
				continue
			}
			dir, file := filepath.Split(cr.Source.DylibPath)
			links = append(links, CrateLink{
				Dynamic: true,
				Dir:     filepath.Clean(dir),
				Name:    unlib(sess, file),
			})
		}
	}
	return links, nil
}
