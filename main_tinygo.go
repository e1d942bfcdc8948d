//go:build tinygo

package main

import (
	"micscope/app"
	"micscope/hal"
)

func main() {
	app.Run(hal.New())
}
