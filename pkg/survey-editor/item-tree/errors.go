package itemtree

import (
	"errors"
	"fmt"
)

// Domain errors. Operations returning one of these did not change the tree.
var (
	ErrItemNotFound  = errors.New("item not found")
	ErrDuplicateKey  = errors.New("key already exists")
	ErrInvalidKey    = errors.New("invalid item key")
	ErrInvalidParent = errors.New("parent is not a group item")
	ErrSameParent    = errors.New("item already belongs to this parent")
	ErrCyclicMove    = errors.New("cannot move an item into itself or one of its descendants")
	ErrRootItem      = errors.New("operation not allowed on the root item")
	ErrInvalidIndex  = errors.New("index out of range")
)

// StructureError reports a survey definition that does not follow the key structure,
// e.g. a child whose key is not prefixed by its parent's key. It points to corrupt input rather than a user error.
type StructureError struct {
	Key    string
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("malformed survey item '%s': %s", e.Key, e.Reason)
}

func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}
