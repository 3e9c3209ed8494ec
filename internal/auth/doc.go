// Package auth provides authorization primitives: the capability constants
// shared with external tooling, a permission service resolving capabilities
// through role assignments, and Fiber middlewares gating routes on them.
package auth
