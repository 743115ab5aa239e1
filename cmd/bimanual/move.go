package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/openteleop/bimanual/pkg/robot"
	"github.com/openteleop/bimanual/pkg/traj"
)

type MoveCommand struct {
	Pose     string  `long:"pose" default:"home" choice:"home" choice:"sleep" description:"Target pose"`
	Duration float64 `long:"duration" default:"1.0" description:"Move duration in seconds"`
	Release  bool    `long:"release" description:"Release follower torque after the move"`
}

// Preset arm poses in normalized joint units, waist..wrist_rotate order.
// Sleep tucks the arm over the base; home is the neutral ready pose.
var presetPoses = map[string][]float64{
	"home":  {0, 0, 0, 0, 0, 0},
	"sleep": {0, -88, 82, 0, 60, 0},
}

// Preset gripper positions per pose: closed for sleep, open for home.
var presetGrippers = map[string]float64{
	"home":  50,
	"sleep": -90,
}

func (c *MoveCommand) Execute(args []string) error {
	pose, ok := presetPoses[c.Pose]
	if !ok {
		return fmt.Errorf("unknown pose %q", c.Pose)
	}

	cfg, err := robot.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'bimanual setup' first.")
		os.Exit(1)
	}

	ctx := context.Background()
	duration := time.Duration(c.Duration * float64(time.Second))

	var arms []traj.ArmActuator
	var grippers []traj.GripperActuator
	var armTargets [][]float64
	var gripTargets []float64
	var opened []*robot.Arm

	for _, side := range robot.Sides() {
		armCfg := cfg.Follower(side)
		if armCfg.Port == "" || !armCfg.IsCalibrated() {
			fmt.Fprintf(os.Stderr, "follower_%s not configured. Run 'bimanual setup' first.\n", side)
			os.Exit(1)
		}

		arm, err := robot.NewArm(*armCfg)
		if err != nil {
			log.Fatalf("Failed to open follower_%s: %v", side, err)
		}
		defer arm.Close()

		if err := arm.SetupFollower(ctx); err != nil {
			log.Fatalf("Failed to enable follower_%s: %v", side, err)
		}

		opened = append(opened, arm)
		arms = append(arms, arm)
		grippers = append(grippers, arm)
		armTargets = append(armTargets, pose)
		gripTargets = append(gripTargets, presetGrippers[c.Pose])
	}

	fmt.Printf("Moving both followers to %s pose over %.1fs...\n", c.Pose, c.Duration)

	if err := traj.MoveArms(ctx, arms, armTargets, duration, traj.DefaultStep); err != nil {
		log.Fatalf("Arm move failed: %v", err)
	}
	if err := traj.MoveGrippers(ctx, grippers, gripTargets, duration, traj.DefaultStep); err != nil {
		log.Fatalf("Gripper move failed: %v", err)
	}

	if c.Release {
		for _, arm := range opened {
			if err := arm.TorqueOff(ctx); err != nil {
				log.Printf("Torque release failed: %v", err)
			}
		}
		fmt.Println("Torque released.")
	}

	fmt.Println("Done.")
	return nil
}
