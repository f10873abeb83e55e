// Package core provides the shared conventions of the engine: the Config
// resource envelope with its functional options, fixed-point musical-time
// arithmetic, and small numeric helpers used across the render path.
package core
