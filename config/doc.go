// Package config decodes a YAML analysis configuration, validates it with
// struct tags, and converts it into markov and topology options.
//
// Parse never touches the filesystem; callers read the bytes themselves.
//
//	markov:
//	  method: qp
//	  neighbors: 30
//	topology:
//	  tolerance: 1e-4
//	  domain:
//	    - {lo: -2, hi: 2}
//	    - {lo: -2, hi: 2}
package config
