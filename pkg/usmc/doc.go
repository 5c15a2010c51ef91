// Package usmc drives USMC-class USB stepper-motor controllers.
package usmc

// The driver mediates between the semantic view of a controller
// (positions in steps, speeds in steps/sec, temperatures in Celsius)
// and the controller's raw control-transfer protocol. It owns one
// record per attached device with a write-through cache of the soft
// configuration, serializes wire access per device, and converts units
// according to the reported firmware version.
//
// The USB transport itself is pluggable (see the usb subpackage); the
// sim subpackage provides an emulated controller for tests and the
// interactive harness.
