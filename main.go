package main

import (
	"runtime"

	"github.com/asdfjk123/renode/cmd"
)

// The engine runs on the main goroutine and needs the primary OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	cmd.Execute()
}
