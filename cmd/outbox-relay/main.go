package main

import (
	"os"

	"github.com/novendor/novendor-site/server/outboxrelay"
)

func main() {
	if err := outboxrelay.Run(); err != nil {
		os.Exit(1)
	}
}
