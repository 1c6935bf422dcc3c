package main

import (
	"os"

	"github.com/pharmatch/chatbot/internal/botctl"
)

func main() {
	if err := botctl.Execute(); err != nil {
		os.Exit(1)
	}
}
