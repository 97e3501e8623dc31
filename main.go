// Package main is the entry point for quickdeck.
package main

import (
	"github.com/quickdeck/quickdeck/cmd"
	"github.com/quickdeck/quickdeck/config"
	"github.com/quickdeck/quickdeck/internal/cache"
	"github.com/quickdeck/quickdeck/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cache.CollectGarbage()

	cmd.Execute()
}
