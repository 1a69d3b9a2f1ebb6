// Package document provides the normalized in-memory tree the engine
// evaluates rules against.
//
// Parse converts YAML (and therefore JSON, a YAML subset) into a Node
// tree. Mappings preserve insertion order so diagnostics and reports are
// deterministic, every node carries its source location, and scalars are
// tagged with their concrete kind. Trees are immutable after parsing;
// concurrent validation runs may share a parsed tree freely.
//
// Resolve walks a parsed ast.Path against a tree and returns every node
// it locates together with the concrete path that reached it. Compare and
// Check apply clause comparators to located nodes with explicit tagged
// comparison: incompatible kinds yield a typed EvaluationError instead of
// coercing.
package document
