// Package bimanual provides teleoperation support for a dual-arm robot rig:
// leader/follower mirroring for two arm pairs, synchronized multi-stream
// recording of camera and joint telemetry, and paced trajectory playback for
// moving arms and grippers between poses.
//
// # Installation
//
//	go install github.com/openteleop/bimanual/cmd/bimanual@latest
//
// # Usage
//
// First, run setup to detect and calibrate the four arms:
//
//	bimanual setup
//
// Then start teleoperation:
//
//	bimanual teleoperate
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/bimanual: CLI with setup, teleoperate, monitor, move and info commands
//   - pkg/robot: arm driver adapter, calibration, rig configuration
//   - pkg/teleop: dual-arm leader/follower controller
//   - pkg/traj: linear trajectory interpolation and paced playback
//   - pkg/recorder: image and joint-state recorders with rate diagnostics
//   - pkg/stream: last-value sample buffer for named streams
//   - pkg/bus: in-process topic pub/sub used as the rig middleware
//   - pkg/msg: message types and topic naming
//   - pkg/diag: timestamp-rate estimation
//   - pkg/base: mobile-base setpoint smoothing
package bimanual
