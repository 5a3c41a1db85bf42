package kinship

import "errors"

// Structural errors. They are reported to the caller and never folded into an
// "unrelated" result.
var (
	// ErrUnknownPerson is returned when a query references an id absent from the graph.
	ErrUnknownPerson = errors.New("unknown person")

	// ErrCyclicAncestry is returned when a chain of parent links leads back to itself.
	ErrCyclicAncestry = errors.New("cyclic ancestry")

	// ErrDuplicatePerson is returned by NewGraph when two people share an id.
	ErrDuplicatePerson = errors.New("duplicate person id")

	// ErrDanglingLink is reported by Validate for links to people not in the graph.
	ErrDanglingLink = errors.New("link to unknown person")

	// ErrAsymmetricPartner is reported by Validate when X lists Y but Y does not list X.
	ErrAsymmetricPartner = errors.New("asymmetric partner link")

	// ErrSelfLink is reported by Validate when a person is its own parent or partner.
	ErrSelfLink = errors.New("person linked to itself")
)
