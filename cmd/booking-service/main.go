package main

import (
	"os"

	"github.com/novendor/novendor-site/server/bookingservice"
)

func main() {
	if err := bookingservice.Run(); err != nil {
		os.Exit(1)
	}
}
