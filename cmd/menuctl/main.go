package main

import (
	"fmt"
	"os"

	"sjsage522/menufinder/logger"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	logger.InitWithWriter(os.Stderr)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
