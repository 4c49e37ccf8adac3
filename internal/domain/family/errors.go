package family

import "errors"

var (
	// ErrTreeNotFound indicates the tree doesn't exist.
	ErrTreeNotFound = errors.New("tree not found")
	// ErrMemberNotFound indicates the member doesn't exist in any tree.
	ErrMemberNotFound = errors.New("member not found")
	// ErrInvalidRelationship indicates an unknown relationship kind.
	ErrInvalidRelationship = errors.New("invalid relationship kind")
	// ErrInvalidInput indicates malformed input that cannot be defaulted.
	ErrInvalidInput = errors.New("invalid family input")
	// ErrTreeExists indicates an imported tree id is already in use.
	ErrTreeExists = errors.New("tree already exists")
)
