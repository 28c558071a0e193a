package main

import "github.com/dmitrymomot/httpsession/cmd/sessiond/cmd"

func main() {
	cmd.Execute()
}
