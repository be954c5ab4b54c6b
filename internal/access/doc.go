// Package access resolves effective permissions for guild members from the
// database and exposes Fiber middleware to gate API routes on them.
//
// The pure bit-field algebra lives in internal/permissions; this package
// supplies it with role sets and channel overwrites loaded through GORM,
// including parent-category substitution for synchronized channels.
package access
