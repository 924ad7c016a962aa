// Package hardware defines the command surface liquidkit drives on a robot.
//
// Controller is implemented by a robot driver or by the simulator in
// hardware/sim. Every call blocks until the robot has finished the motion;
// Delay in particular always runs to completion.
//
// MagneticModule and TemperatureModule wrap the module commands with their
// current state and implement component.Component, so a run registered in a
// component.Registry returns them to a safe idle state on shutdown.
package hardware
