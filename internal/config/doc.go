// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources. A field takes the first
// non-zero value in this order:
//  1. Environment variables (a .env file is exported into the environment
//     first, never overriding it)
//  2. Command-line flags
//  3. JSON config file
//  4. Defaults
//
// A zero value (false, 0, "") never hides a value from a later source.
//
// The main entry point is [GetStructuredConfig].
package config
