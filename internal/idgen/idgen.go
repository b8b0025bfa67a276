package idgen

import (
	nanoid "github.com/matoous/go-nanoid"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	size     = 12
)

// New returns a random id identifying a single test run.
func New() string {
	return nanoid.MustGenerate(alphabet, size)
}
