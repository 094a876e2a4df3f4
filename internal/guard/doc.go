// Package guard provides the background execution guard held around each
// analysis call.
//
// A Guard hands out a Lease whose context the guarded work runs under. The
// none variant passes the caller's context through; the grace variant keeps
// work alive for a bounded period after the caller's context is cancelled,
// so a daemon shutdown gives an in-flight job a chance to finish. The variant
// is chosen once at startup from configuration.
package guard
