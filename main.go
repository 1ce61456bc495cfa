package main

import "github.com/jagaapp/jaga/cmd"

func main() {
	cmd.Execute()
}
