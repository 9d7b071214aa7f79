package signal

import "errors"

var (
	// ErrDuplicateName is returned when two nodes are registered under the
	// same name in one graph.
	ErrDuplicateName = errors.New("node name already registered")

	// ErrNoFactors is returned when a product node is built with no factors.
	ErrNoFactors = errors.New("product needs at least one factor")
)
