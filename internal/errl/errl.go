// Package errl annotates errors with the location where they were raised.
//
// The returned errors keep the wrapped chain intact, so errors.Is and errors.As
// work as usual, and carry a stack trace that is printed with the "%+v" verb.
package errl

import (
	"fmt"
	"path"
	"runtime"

	"github.com/pkg/errors"
)

// Error annotates err with the location of the caller. It returns nil if err is nil.
func Error(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(fmt.Errorf("%s%w", location(2), err))
}

// Errorf formats an error like fmt.Errorf (including %w wrapping) and prefixes
// the location of the caller.
func Errorf(format string, args ...any) error {
	args = append([]any{location(2)}, args...)
	return errors.WithStack(fmt.Errorf("%s"+format, args...))
}

// location returns "package.Function:line: " for the frame skip levels above.
func location(skip int) string {
	pc, _, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d: ", path.Base(fn.Name()), line)
}
