package testutil

// ConstantGenerator returns the same run id every time, for scenarios that
// run several passes and compare output against golden files.
//
// Thread-safety: ConstantGenerator is stateless and safe for concurrent use.
type ConstantGenerator struct {
	id string
}

// NewConstantGenerator creates a generator for id. An empty id becomes
// "test-run".
func NewConstantGenerator(id string) *ConstantGenerator {
	if id == "" {
		id = "test-run"
	}
	return &ConstantGenerator{id: id}
}

// Generate returns the fixed id.
func (g *ConstantGenerator) Generate() string {
	return g.id
}
