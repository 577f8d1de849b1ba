// Package journal keeps an audit history of tango runs in SQLite.
//
// Every run, every generated file and every converter warning is recorded.
// The journal is write-mostly: the engine only appends to it, and nothing
// in reconciliation reads it. The stamp file remains the sole watermark.
//
// Paths are stored twice: as given, and as an NFC-normalized slash-separated
// key so History finds a file regardless of how its name was composed.
package journal
