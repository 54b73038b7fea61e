package main

import "github.com/stoik/mailhub/services/mail-service/internal/app"

func main() {
	app.Execute()
}
