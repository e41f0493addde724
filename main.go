// /usr/bin/env go run "$0" "$@" ; exit "$?"
package main

import (
	"log"

	"github.com/cblogserver/backend/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("Error running the application: %v", err)
	}
}
