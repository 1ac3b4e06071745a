package main

import (
	"log"

	"quietblock-api/core/server"
)

// @title QuietBlock API
// @version 1.0
// @description Reserve private time intervals with conflict detection and email reminders.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := server.Run(); err != nil {
		log.Fatal(err)
	}
}
