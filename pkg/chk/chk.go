// Package chk provides the error-check-and-log call-site idiom used
// throughout this repository: if err = f(); chk.E(err) { return }.
package chk

import "github.com/nostrcore/strtr/pkg/log"

// E logs err at error level and reports whether err is non-nil.
func E(err error) bool {
	if err == nil {
		return false
	}
	log.E.F("%v", err)
	return true
}

// T logs err at trace level and reports whether err is non-nil. Use
// this for conditions that are expected and recoverable, not failures.
func T(err error) bool {
	if err == nil {
		return false
	}
	log.T.F("%v", err)
	return true
}
