package main

import "github.com/trainzkit/tzbuild/cmd"

func main() {
	cmd.Execute()
}
