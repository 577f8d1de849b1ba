// Package harness replays filesystem scenarios against the tango engine.
//
// A scenario builds a project tree step by step, with exact modification
// times, runs synchronization passes and checks the outcome. It exercises
// the real engine, converters and, optionally, the run journal.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config:                   # optional overrides of the default config
//	  literate_dir: lit
//	journal: true             # record runs in .tango/journal.db
//	steps:
//	  - write: { path: src/lib.rs, mtime: "1000000.000", content: "fn f() {}\n" }
//	  - touch: { path: src/lib.rs, mtime: "1000100.000" }
//	  - remove: { path: tango.stamp }
//	  - run:
//	      expect_error: NO_STAMP
//	      expect_generated: [src/lib.md]
//	      expect_warnings: 0
//	      interfere: { path: src/lib.rs, mtime: "1000200.000" }
//	assertions:
//	  - type: content
//	    path: src/lib.md
//	    content: "..."
//	  - type: mtime
//	    path: src/lib.md
//	    mtime: "1000000.000"
//
// Times are decimal seconds since the epoch, with up to nine fractional
// digits, so sub-millisecond differences can be written down exactly.
//
// # Assertion Types
//
//   - exists / missing: the file is (not) present
//   - content: the file holds exactly the given text
//   - mtime: the file's modification time equals the given time
//   - same_mtime: the file's modification time equals that of `other`
//   - journal_runs: the journal holds `count` runs
//
// # Golden Files
//
// RunWithGolden snapshots the final tree (paths, mtimes, contents) and
// compares it with testdata/golden/{name}.golden. Regenerate with
//
//	go test ./internal/harness -update
package harness
