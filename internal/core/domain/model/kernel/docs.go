// Package kernel holds the value objects shared by every aggregate:
// identifiers and stations.
package kernel
