// Package canvas models a directed graph of typed processing nodes: the
// port and type system, the connection validator, the topological scheduler,
// and the serializable composition format. Code generation lives in
// package codegen; the mutable composition state machine (undo/redo and
// autosave) lives in package editor.
package canvas
