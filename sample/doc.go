// SPDX-License-Identifier: EPL-2.0

// Package sample converts native decoder samples into the representation a
// caller asks for.
//
// # Supported Types
//
// The caller-facing types are int8, int16, int32, float32 and float64 (see
// Type). Native samples are signed or unsigned integers of 1 to 32 bits, or
// IEEE floats.
//
// # Conversion Rules
//
//   - Integer to float divides by the reference amplitude 2^(bits-1), so the
//     full signed range lands in [-1.0, 1.0).
//   - Integer widening shifts left and is exact.
//   - Integer narrowing rounds to the nearest value and saturates. The lost
//     low bits are expected and never reported as an error.
//   - Float to integer clamps to [-1.0, 1.0], scales, rounds and saturates.
//     It never wraps. NaN converts to zero.
//   - Unsigned (offset-binary) input is re-centered on zero first.
//
// Every function is pure: the same input always yields the same output.
//
// # Precision
//
// Integer samples up to 24 bits survive a round trip through float32
// exactly, and up to 32 bits through float64. 32-bit integers converted to
// float32 lose their low 8 bits.
package sample
