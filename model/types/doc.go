// Package types defines the tool capability contract shared by the live
// registry, the interceptor and the post-approval executor.
package types
