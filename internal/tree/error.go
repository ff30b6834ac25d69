package tree

import (
	"fmt"

	"github.com/pkg/errors"
)

// errorf builds a wrapped error attributing the failure to typeMethod,
// layered on github.com/pkg/errors so causes survive
// errors.Cause/errors.Is.
func errorf(typeMethod, format string, a ...interface{}) error {
	return errors.Wrapf(fmt.Errorf(format, a...), "tree.%s", typeMethod)
}
