// Package analyze provides debugging taps for the engine output: peak and
// RMS block meters, and a streaming FFT magnitude analyzer for verifying
// oscillator tuning and filter response. These run off the render deadline
// on copies of the output.
package analyze
