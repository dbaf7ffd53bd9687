// Package pipeline runs the clean → group → assemble steps for every state a source yields
// and collects the resulting tables for export.
//
// By default a state that fails to parse is skipped and reported, and the remaining states
// are still collected. In strict mode the first failure aborts the whole run.
package pipeline
