// Package main provides the entry point for the parley guild management
// service. It runs a Fiber based REST API for roles, members, channels,
// permission overwrites and threads, resolves effective member permissions
// from layered overwrites, and uses gorm for data persistence.
package main
