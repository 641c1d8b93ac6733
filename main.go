package main

import "github.com/kozaktomas/clinic-kiosk/cmd"

func main() {
	cmd.Execute()
}
