// ABOUTME: Package documentation for the background tracker
// ABOUTME: Describes how controller, scheduler, and detector fit together

// Package tracker runs background location sampling.
//
// A Controller owns one Scheduler loop at a time. Each tick the Scheduler asks
// a location.Provider for a fix and hands it to the Detector, which records it
// in the fix store (deriving the moving flag) and raises a no-motion
// notification once per stationary streak that outlasts
// models.NoMotionThreshold. The Controller exposes start, stop, restart and a
// paged view of recorded fixes to observers.
package tracker
