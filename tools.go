//go:build tools
// +build tools

package tools

import (
	_ "github.com/golang/mock/mockgen" // pkg/solver/solverfakes
)
