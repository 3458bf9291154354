// Command timewarp runs and controls speed-adjustable timer sessions.
package main

import "github.com/sarchlab/timewarp/timewarp/cmd"

func main() {
	cmd.Execute()
}
