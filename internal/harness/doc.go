// Package harness runs mixing scenarios against a freshly built table.
//
// The harness loads a catalog and authored rules, builds the table,
// resolves each step and validates the trace.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	catalog: [HCl, NaOH, CuSO4]
//	catalog_file: path/to/chemicals.json
//	rules_file: path/to/reactions.json
//	rules:
//	  - key: CuSO4+NaOH
//	    record: { type: precipitation, requires: [stirrer], ... }
//	steps:
//	  - mix: [NaOH, CuSO4]
//	    apparatus: [stirrer]
//	    temperature: 25
//	    expect:
//	      outcome: resolved
//	      type: precipitation
//	assertions:
//	  - type: trace_contains
//	    key: CuSO4+NaOH
//	    outcome: blocked
//	  - type: table_size
//	    count: 6
//
// # Assertion Types
//
//   - trace_contains: a step resolved the key, optionally with an outcome
//   - trace_order: outcomes appear in the given order
//   - trace_count: an outcome appears exactly N times
//   - table_size: the built table has N entries
//
// # Golden Traces
//
// Traces serialize to canonical JSON so golden files compare byte for
// byte. See RunWithGolden.
package harness
