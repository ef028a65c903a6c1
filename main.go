package main

import "github.com/shouni/go-raw-fetch/cmd"

func main() {
	cmd.Execute()
}
