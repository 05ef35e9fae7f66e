package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"bsrqc/internal/cli"
)

func main() {
	// .env 可选，缺失时忽略
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
