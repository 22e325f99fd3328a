// main.go
package main

import (
	"log"
	"os"

	"example.com/compost/console/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
