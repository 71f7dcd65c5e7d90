package main

import "github.com/user/formcheck/cmd"

func main() {
	cmd.Execute()
}
