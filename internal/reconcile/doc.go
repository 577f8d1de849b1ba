// Package reconcile decides whether a generated file must be rewritten.
//
// Three clocks take part: the modification time of the original, the
// modification time of the generated target, and the modification time of
// the stamp file written at the end of the previous run. Comparisons tolerate
// sub-millisecond differences because many filesystems truncate mtimes.
package reconcile
