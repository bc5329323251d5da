// Package lutsmith generates parameterized, architecture-independent circuit
// templates ("sketches") whose unresolved decision points ("holes") are later
// filled in by an external constraint solver, realizing a bit-vector
// specification out of a hardware platform's primitive building blocks.
//
// The library is organized as:
//
//   - ir: the expression tree representation, including holes;
//   - arch: the architecture capability protocol (Construct) and the
//     reference Generic platform;
//   - mapping: logical-to-physical bit ordering strategies;
//   - sketch: the sketch generators and the dense-packing helper;
//   - interp: the reference evaluator used to check candidate solutions;
//   - solver: the solver boundary and a brute-force reference solver.
package lutsmith

import "github.com/blang/semver/v4"

// Version of the library. Serialized sketches embed it; decoding rejects
// artifacts produced by a different major version.
var Version = semver.MustParse("0.1.0")
