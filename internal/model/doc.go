// Package model provides the Go representation of a jobgate pipeline. Its
// core purpose is to give the engine a strongly-typed, format-agnostic view
// of the user's declarations, independent of whether they were written in
// HCL or YAML.
//
// # Core Concepts
//
//   - Job: one labeled unit of conditional work. It carries the gate (a set
//     of condition names), the scoped environment overrides, the ordered
//     command sequence, and an optional cleanup block.
//
//   - SignalSet: the named boolean facts about the current run ("this code
//     area changed", "reporting is enabled"). Signals are assembled before a
//     run begins and are read-only while the pipeline executes.
//
//   - Result: the terminal record of one job for one run. Results are
//     created once per job, finalized when the job reaches a terminal
//     state, and never mutated afterwards.
//
// Why a separate model package?
//
// The loaders (internal/hcl, internal/yaml) and the engine packages
// (internal/runner, internal/pipeline) both depend on these types, and
// neither should depend on the other. Keeping the model free of parsing
// and execution logic lets the engine be tested with hand-built jobs and
// lets new loader formats be added without touching execution code.
package model
