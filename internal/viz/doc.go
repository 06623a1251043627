// Package viz provides a live terminal view of a running control session.
//
// The view is a Bubble Tea program that steps the simulated arm in real
// time, ticks the controller, and plots the selected joint's velocity
// against its target.
//
// # Key Bindings
//
//	Tab     - Select next joint
//	Up/Down - Nudge the selected joint's target velocity
//	0       - Zero the selected joint's target
//	S       - Send an empty command (stop/reset)
//	Q       - Quit
package viz
