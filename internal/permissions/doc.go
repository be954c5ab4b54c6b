// Package permissions implements the permission bit field used across Parley.
//
// A permission is one bit in a 64-bit field. Roles carry a base bit field,
// channels refine it with per-role and per-member overwrites, and the
// resolver in this package computes the final effective field for a
// (member, channel) pair. Sets are immutable values: Add and Remove return
// new Sets and never mutate in place, so a Set can be shared between
// goroutines without synchronization.
package permissions
