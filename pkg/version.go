// Package gomi holds build information for the gomi application.
// gomi turns a municipal waste-collection schedule into a queryable
// database of collection events and item categories.
package gomi

var (
	// Version of the application, set by build flags.
	Version = "v0.1.0"
	// Build timestamp, set by build flags.
	Build = "n/a"
)
