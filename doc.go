// Package evcap captures structured runtime events, log-like records plus
// hierarchical execution spans, emitted by an instrumented process. It
// retains a bounded recent history of those events, fans them out to live
// subscribers as they arrive, and can serialize the full history to a
// portable snapshot document for offline inspection.
//
// The core types are [Event] (one captured record with its span stack and
// context), [Target] (a generic publish/subscribe point with callback and
// stream consumption), [Manager] (the bounded newest-first store and single
// publish point), and [ExportData] (the snapshot codec). A process-wide
// manager can be installed with [InitGlobal], but nothing requires it:
// every part of the API works against an explicitly constructed [Manager],
// which is the recommended shape for tests.
//
// Emission is synchronous and in-memory, with no I/O beyond explicit
// snapshot export and import. Durability across crashes is out of scope.
package evcap
