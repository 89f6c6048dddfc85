//go:build tinygo && baremetal

package main

import (
	"spryg/app"
	"spryg/hal"
)

func main() {
	app.RunForever(hal.New(), app.DefaultConfig)
}
