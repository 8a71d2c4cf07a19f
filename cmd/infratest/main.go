package main

import (
	"fmt"
	"os"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/cli"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/console"
)

func main() {
	app := cli.NewCLIApp(console.NewConsole())
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
