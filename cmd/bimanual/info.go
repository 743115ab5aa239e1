package main

import (
	"context"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/openteleop/bimanual/pkg/robot"
)

type InfoCommand struct{}

func (c *InfoCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Bimanual Port Scanner"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	arms := findArms()
	if len(arms) == 0 {
		fmt.Println("No arms found.")
		fmt.Println("Make sure your arms are connected and powered on.")
		return nil
	}

	ctx := context.Background()
	motors := robot.AllMotors()

	for _, arm := range arms {
		fmt.Println()
		fmt.Printf("%s (%d servos)\n", arm.port, len(arm.servos))
		for _, s := range arm.servos {
			servo := feetech.NewServo(arm.bus, s.ID, s.Model)
			pos, err := servo.Position(ctx)
			name := "?"
			if s.ID >= 1 && s.ID <= len(motors) {
				name = string(motors[s.ID-1])
			}
			if err != nil {
				fmt.Printf("  %2d %-13s model=%v position=read error: %v\n", s.ID, name, s.Model, err)
				continue
			}
			fmt.Printf("  %2d %-13s model=%v position=%d\n", s.ID, name, s.Model, pos)
		}
		arm.bus.Close()
	}

	fmt.Println()
	if cfgPorts := configuredPorts(); len(cfgPorts) > 0 {
		fmt.Println("Configured roles:")
		for _, role := range armRoles {
			if port, ok := cfgPorts[role]; ok {
				fmt.Printf("  %-14s %s\n", roleLabel(role)+":", port)
			}
		}
	} else {
		fmt.Println("No configuration found. Run 'bimanual setup' to assign roles.")
	}

	return nil
}

func configuredPorts() map[string]string {
	cfg, err := robot.LoadConfig()
	if err != nil {
		return nil
	}
	out := make(map[string]string)
	for role, arm := range cfg.Arms() {
		if arm.Port != "" {
			out[role] = arm.Port
		}
	}
	return out
}
