package main

import (
	"log"
	"os"

	"lms/config"
	"lms/database"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	cli := commandLine{db: database.Database.Db}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Printf("[ADMIN] error: %v", err)
		}
		os.Exit(1)
	}
}
