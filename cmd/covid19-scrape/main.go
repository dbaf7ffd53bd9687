package main

import "github.com/apgr0ss/covid19-scraper/internal/cli"

func main() {
	cli.Execute()
}
