package main

import "github.com/practice-coach/backend/internal/cli"

func main() {
	cli.Execute()
}
