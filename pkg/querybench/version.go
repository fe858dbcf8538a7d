// Package querybench holds build metadata for the querybench binary.
package querybench

// Version is the release version reported by `querybench version`.
const Version = "0.1.0"
