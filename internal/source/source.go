package source

import "context"

// BlockPair holds the raw text of one state's aggregate row and its county list.
type BlockPair struct {
	State    string `json:"state"`
	Counties string `json:"counties"`
}

// Source yields state block pairs in page order. Close releases whatever the source holds.
type Source interface {
	StateBlocks(ctx context.Context) ([]BlockPair, error)
	Close() error
}

// Static serves a fixed set of block pairs
type Static struct {
	Pairs []BlockPair
}

// NewStatic creates a Static source
func NewStatic(pairs ...BlockPair) *Static {
	return &Static{Pairs: pairs}
}

// StateBlocks returns a copy of the stored pairs
func (s *Static) StateBlocks(ctx context.Context) ([]BlockPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pairs := make([]BlockPair, len(s.Pairs))
	copy(pairs, s.Pairs)
	return pairs, nil
}

// Close is a no-op
func (s *Static) Close() error {
	return nil
}
