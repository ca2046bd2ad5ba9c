// SPDX-License-Identifier: Apache-2.0

package migrations

// compiledRegistry collects artifacts self-registered by generated
// migration packages' init() functions, the same "import the package for
// its side effect" idiom goose and ent use for compiled-in migrations. The
// Manager's discovery does not depend on this: it parses migration source
// files directly (ParseArtifactSource) so a CLI running against an
// unmodified binary still sees migrations added to disk after the last
// build.
var compiledRegistry []*Artifact

// Register records a, called from a generated migration file's init().
func Register(a *Artifact) {
	compiledRegistry = append(compiledRegistry, a)
}

// Registered returns every artifact registered so far via Register.
func Registered() []*Artifact {
	return compiledRegistry
}
