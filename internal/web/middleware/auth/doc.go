// Package auth provides the session authentication middleware for the web
// request pipeline.
package auth
