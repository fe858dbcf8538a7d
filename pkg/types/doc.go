// Package types defines the Store interface, the Users/Activities entity
// types, query results, highlight spans, and the standard errors shared by
// the querybench backend and its presentation layer.
package types
