// Package solver defines the contract shared by every cnvx solving engine:
// the Solver capability interface, the functional solve options, and the
// Solution/Status vocabulary.
//
// Engines live in subpackages (solver/simplex, solver/bnb) and implement
// Solver identically; future engines (multi-objective, sat, nlp) plug in
// through the same interface.
package solver
