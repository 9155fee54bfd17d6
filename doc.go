// Package semigroups decides the word problem for finitely presented
// semigroups and monoids, and more generally for finitely generated
// congruences on them.
//
// Given a presentation ⟨A | R⟩ (a finite alphabet together with a finite
// set of relations) and, optionally, extra generating pairs and a
// congruence kind (two-sided, left, or right), the module computes — when
// it terminates — the number of congruence classes, decides whether two
// words represent the same class, and produces canonical normal forms.
//
// Three cooperating solvers make this tractable:
//
//	wordgraph/, felsch/   — the shared word-graph and deduction machinery
//	toddcoxeter/          — coset enumeration (HLT, Felsch, and interleaved)
//	rewrite/, knuthbendix/ — confluent string rewriting completion
//	race/                 — races solvers in parallel, reports the winner
//	congruence/           — the user-facing facade tying it all together
//
// See congruence.Facade for the entry point most callers want.
package semigroups
