package main

import (
	"log"

	"github.com/hireview/hireview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
