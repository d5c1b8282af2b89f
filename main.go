package main

import "github.com/harrisonrobin/backlog/cmd"

func main() {
	cmd.Execute()
}
