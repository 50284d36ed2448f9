//go:build tools

// Package tools records development-tool dependencies so `go mod tidy`
// tracks their versions without them becoming part of the runtime
// build.
package tools

import (
	_ "golang.org/x/lint/golint"
	_ "honnef.co/go/tools/staticcheck"
)
