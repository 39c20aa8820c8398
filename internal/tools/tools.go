//go:build tools

// Package tools pins CLI dependencies (the swag generator) in go.mod.
package tools

import (
	_ "github.com/swaggo/swag"
)
