package geometry

// Process-wide tolerance scales. MatchTol is a relative tolerance for
// direction / parallelism checks; positional checks scale it by a local
// length. The overlap engine tightens MatchTol through its retry ladder
// rather than mutating these.
const (
	// MatchTol is the default relative matching tolerance
	MatchTol = 1e-4

	// Small is a relative round-off threshold
	Small = 1e-13

	// VSmall guards divisions against zero denominators
	VSmall = 1e-300
)
