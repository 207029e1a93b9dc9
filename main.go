package main

import "mt103perf/cmd"

func main() {
	cmd.Execute()
}
