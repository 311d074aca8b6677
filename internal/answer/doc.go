// Package answer assembles grounded answers from search results.
//
// The assembler concatenates result contents into a bounded context
// block, wraps it in a grounding instruction, and hands it to a
// Generator. Generation is strictly best-effort: with no generator
// configured, no usable results, or any provider failure the assembler
// returns FallbackAnswer instead of an error, so the search results
// themselves remain the primary output.
package answer
