package main

import (
	"os"

	"github.com/awsssrD/road/cmd"
)

func main() {
	os.Exit(cmd.Execute(SERVER_SIGNATURE))
}
