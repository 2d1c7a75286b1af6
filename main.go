package main

import (
	"log"

	"lms/config"
	"lms/database"
	"lms/routers"
	"lms/services"
	"lms/utils"
)

func main() {
	config.LoadConfig()
	if err := config.AppConfig.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	database.ConnectDb()
	utils.InitMailer()

	if config.AppConfig.EnableScheduler {
		scheduler, err := services.InitializeScheduler(database.Database.Db)
		if err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	app := routers.NewApp(config.AppConfig, true)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
