// Package middleware provides HTTP middleware for the audit server:
// request ID propagation, structured request logging, and panic
// recovery. Middleware composes innermost-first, so the conventional
// chain is requestid -> logging -> recovery -> handler.
package middleware
