// Package formats provides parsers for the legacy game asset formats
// consumed by the editor: DFF model containers, TXD texture dictionaries,
// IPL placement lists, IDE object definitions, and the DAT family
// (paths, vehicle handling, water planes).
//
// All parsers are pure functions from a byte slice to an immutable result:
// they hold no state between calls, never trust a declared size or count
// without checking it against the remaining input, and never panic on
// malformed data. Structural failures abort the parse with an error;
// per-record problems in line-oriented formats (and per-texture problems
// in dictionaries) are collected as Diagnostics on the result and parsing
// continues.
package formats
