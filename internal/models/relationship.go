package models

// RelationshipResult describes what From is to To.
type RelationshipResult struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Sentence string `json:"sentence,omitempty"`
	// Error is set on batch items that could not be resolved; the other fields are then empty.
	Error string `json:"error,omitempty"`
}

// ChainLink is one hop of a relationship chain. Label is the role of To relative
// to From: parent, child, sibling or spouse.
type ChainLink struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// PersonPair is one query of a batch request.
type PersonPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BatchRequest asks for several relationships against one family snapshot.
type BatchRequest struct {
	Pairs []PersonPair `json:"pairs"`
}

// Validate checks that the batch is non-empty, within maxPairs and that every id is set.
func (r *BatchRequest) Validate(maxPairs int) error {
	if len(r.Pairs) == 0 {
		return ErrEmptyBatch
	}

	if maxPairs > 0 && len(r.Pairs) > maxPairs {
		return ErrBatchTooLarge(maxPairs)
	}

	for _, p := range r.Pairs {
		if p.From == "" || p.To == "" {
			return ErrMissingID
		}
		if len(p.From) > MaxIDLength || len(p.To) > MaxIDLength {
			return ErrFieldTooLong("id", MaxIDLength)
		}
	}

	return nil
}

// AncestorEntry is one ancestor of a person with its minimal generation distance.
type AncestorEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
	Side     string `json:"side,omitempty"`
	Label    string `json:"label"`
}
