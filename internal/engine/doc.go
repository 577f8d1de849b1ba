// Package engine runs one tango synchronization pass over a project tree.
//
// A pass has four phases, always in this order:
//
//  1. Gather: walk the source and literate roots, pair every file with its
//     counterpart and ask reconcile.Check whether the counterpart must be
//     regenerated. Any conflict aborts the pass before a single byte is
//     written.
//  2. Generate: run the converter for every needed transform, then give the
//     generated file the modification time of its original.
//  3. Verify: re-read every original's modification time. A change since
//     gathering means another process edited the tree during the pass; the
//     pass fails with a concurrent update error. Outputs already written are
//     not rolled back: re-running is the recovery path.
//  4. Stamp: create the stamp file if needed and move its modification time
//     to the newest original that was converted.
//
// The stamp's modification time is the only state carried between passes.
// An optional Recorder receives an audit trail of each pass; nothing in the
// engine ever reads it back.
//
// The engine is single-threaded. Files are opened, consumed and closed one
// transform at a time.
package engine
