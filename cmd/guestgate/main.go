package main

import "github.com/hostling/guestgate/internal/cli"

func main() {
	cli.Execute()
}
