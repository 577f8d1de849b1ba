// Package testutil holds helpers shared by tango's tests: files with exact
// modification times and deterministic clocks and run ids.
package testutil
