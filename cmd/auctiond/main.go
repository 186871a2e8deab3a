package main

import "github.com/LeJamon/goDutchAuction/internal/cli"

func main() {
	cli.Execute()
}
