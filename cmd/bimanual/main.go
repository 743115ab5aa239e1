package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Setup       SetupCommand       `command:"setup" description:"Scan for arms and calibrate them"`
	Teleoperate TeleoperateCommand `command:"teleoperate" alias:"teleop" description:"Start dual-arm teleoperation (leader-follower control)"`
	Monitor     MonitorCommand     `command:"monitor" description:"Show telemetry stream rates for the follower arms"`
	Move        MoveCommand        `command:"move" description:"Move the follower arms to a preset pose"`
	Info        InfoCommand        `command:"info" description:"List detected arms and servos"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "bimanual - teleoperation CLI for a dual-arm rig"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
