package main

import "github.com/hrplatform/leave-management/cmd"

func main() {
	cmd.Execute()
}
