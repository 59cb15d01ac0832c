// Package compiler turns declarative CUE pattern-mapping datasets into
// the frozen in-memory Mapping the resolver queries.
//
// A mapping dataset is a CUE struct keyed by shape key:
//
//	mapping: {
//		"split=and,join=,cancel=": {
//			verb:        "copy"
//			cardinality: "topology"
//		}
//		"split=,join=first,cancel=": {
//			verb:      "await"
//			threshold: "count"
//			count:     1
//		}
//	}
//
// Compilation is two-stage: parse into raw entries, validate (unknown
// verb, malformed shape key, parameter not meaningful for the verb,
// duplicate keys), then bind into typed parameter records. Validation
// collects every error instead of failing fast.
package compiler
