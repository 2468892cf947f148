package main

import "github.com/jsphweid/pianodiff/cmd"

func main() {
	cmd.Execute()
}
