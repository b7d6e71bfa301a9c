// Package notification defines the closed set of notification kinds, the
// payload contract each kind requires, and the delivery adapter that turns
// a queue item into an outbound email.
//
// The queue layer treats Kind and Payload as opaque; this package is where
// they gain meaning. Adding a new kind means adding a constant, extending
// ParseKind, and adding its view builder to Render - the exhaustive switch
// keeps the mapping compile-time checkable instead of a silent runtime
// default.
package notification
