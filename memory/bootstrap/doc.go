// Package bootstrap builds the startup memory hierarchy: the system arena,
// the application resource managing it, an optional RTOS sub-arena, and one
// block pool per RTOS object type.
//
// The hierarchy is described once by a Config and handed around as a
// *System; there is no process-wide default resource to mutate. Code that
// creates RTOS objects asks the System for its Default resource or for the
// pool of the object type.
package bootstrap
