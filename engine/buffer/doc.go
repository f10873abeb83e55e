// Package buffer provides a reusable fixed-length audio block type and pool
// for allocation-friendly handling of rendered audio outside the render path.
package buffer
