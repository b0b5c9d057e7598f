package lib

import "fmt"

// WrapError keeps parent matchable with errors.Is while carrying the details of child
func WrapError(parent error, child error) error {
	return fmt.Errorf("%w: %s", parent, child)
}

// WrapErrorf is WrapError with a formatted child message
func WrapErrorf(parent error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", parent, fmt.Sprintf(format, args...))
}
