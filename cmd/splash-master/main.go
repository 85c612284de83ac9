package main

import "splash-master/internal/cli"

func main() {
	cli.Execute()
}
