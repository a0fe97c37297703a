package main

import (
	"os"

	"github.com/sitewise/sitewise-server/sitewiseservice"
)

func main() {
	if err := sitewiseservice.Run(); err != nil {
		os.Exit(1)
	}
}
