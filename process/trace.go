package process

import (
	"errors"
	"strings"
)

// Trace returns the message of err and of every error it wraps, one per line.
// Errors joined together are listed indented below the error wrapping them.
func Trace(err error) []string {
	var lines []string
	var walk func(err error, depth int)
	walk = func(err error, depth int) {
		for err != nil {
			if joined, ok := err.(interface{ Unwrap() []error }); ok {
				for _, e := range joined.Unwrap() {
					walk(e, depth+1)
				}
				return
			}

			lines = append(lines, strings.Repeat("  ", depth)+err.Error())
			err = errors.Unwrap(err)
		}
	}
	walk(err, 0)
	return lines
}
