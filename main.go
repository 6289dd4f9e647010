package main

import "heinscrape/internal/cli"

func main() {
	cli.Execute()
}
