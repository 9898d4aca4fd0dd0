package main

import (
	"os"

	"github.com/spec-kit/helpdesk/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
