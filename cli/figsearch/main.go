package main

import (
	"os"

	"github.com/joho/godotenv"

	figsearchcmder "github.com/papercomputeco/figsearch/cmd/figsearch"
)

func main() {
	// A missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()

	cmd := figsearchcmder.NewFigsearchCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
