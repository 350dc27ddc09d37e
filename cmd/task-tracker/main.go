package main

import (
	"log"
	"os"

	"github.com/chepyr/task-tracker-cli/internal/cli"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var version = "dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("task-tracker: ")

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
