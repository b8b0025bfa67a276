//go:build tools
// +build tools

// This file exists only to get various parts of the toolchain
// included in go.mod.

package tools

import (
	_ "github.com/matryer/moq"
)
