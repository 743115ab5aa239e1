package msg

import "fmt"

// Camera names for the two rig variants. The mobile rig has no low camera
// (the base occupies its mount).
var (
	MobileCameras     = []string{"cam_high", "cam_left_wrist", "cam_right_wrist"}
	StationaryCameras = []string{"cam_high", "cam_low", "cam_left_wrist", "cam_right_wrist"}
)

// CameraNames returns the camera set for the rig variant.
func CameraNames(mobile bool) []string {
	if mobile {
		return MobileCameras
	}
	return StationaryCameras
}

// ImageTopic returns the color image topic for a camera.
func ImageTopic(cam string) string {
	return fmt.Sprintf("/%s/camera/color/image_rect_raw", cam)
}

// JointStatesTopic returns the joint state topic for a follower side
// ("left" or "right").
func JointStatesTopic(side string) string {
	return fmt.Sprintf("/follower_%s/joint_states", side)
}

// ArmCommandTopic returns the joint group command topic for a follower side.
func ArmCommandTopic(side string) string {
	return fmt.Sprintf("/follower_%s/commands/joint_group", side)
}

// GripperCommandTopic returns the single joint command topic for a follower
// side.
func GripperCommandTopic(side string) string {
	return fmt.Sprintf("/follower_%s/commands/joint_single", side)
}
