package main

import "eventboard-backend/cmd"

func main() {
	cmd.Execute()
}
