// Package robot provides the driver adapter for the rig's serial-bus arms.
package robot

// MotorName identifies a motor in an arm.
type MotorName string

// Motor names for the 7-servo arm: six arm joints plus the gripper.
const (
	Waist       MotorName = "waist"
	Shoulder    MotorName = "shoulder"
	Elbow       MotorName = "elbow"
	ForearmRoll MotorName = "forearm_roll"
	WristAngle  MotorName = "wrist_angle"
	WristRotate MotorName = "wrist_rotate"
	Gripper     MotorName = "gripper"
)

// NumArmJoints is the number of arm joints, excluding the gripper.
const NumArmJoints = 6

// AllMotors returns all motor names in order (matching servo IDs 1-7).
func AllMotors() []MotorName {
	return []MotorName{
		Waist,
		Shoulder,
		Elbow,
		ForearmRoll,
		WristAngle,
		WristRotate,
		Gripper,
	}
}

// ArmMotors returns the arm joint names in order, without the gripper.
func ArmMotors() []MotorName {
	return AllMotors()[:NumArmJoints]
}

// JointNames returns all motor names as plain strings, for joint state
// messages.
func JointNames() []string {
	motors := AllMotors()
	names := make([]string, len(motors))
	for i, m := range motors {
		names[i] = string(m)
	}
	return names
}
