// Package ipws converts enumerations of interior-point weight systems
// between a compact binary representation and per-tier Parquet files.
//
// An enumeration lists, for one dimension and index, every weight system in
// ascending order. Each weight system falls into one of three tiers: its
// polytope has no interior point, is non-reflexive, or is reflexive. Each
// tier carries its own auxiliary data (vertex, facet and point counts, and
// Hodge numbers for reflexive polytopes).
//
// # Architecture
//
// The module is organized in layers:
//
//   - pkg/varint and pkg/wsfile implement the binary weights and polytope
//     info files
//   - pkg/merge restores the global ascending order from the three tiers
//   - pkg/columnar writes and reads the Parquet tier files and the nested
//     vertex files
//   - pkg/palp parses PALP vertex output
//   - internal/pipeline runs conversions with logging, metrics, tracing and
//     optional S3 upload
//   - cmd/ipws is the command-line interface
//
// # Quick Start
//
// Split a binary pair into Parquet files:
//
//	ipws --ws-in ws.bin --polytope-info-in info.bin \
//	  --parquet-non-ip-out non_ip.parquet \
//	  --parquet-non-reflexive-out non_reflexive.parquet \
//	  --parquet-reflexive-out reflexive.parquet
//
// Merge them back:
//
//	ipws --parquet-in non_ip.parquet,non_reflexive.parquet,reflexive.parquet \
//	  --ws-out ws.bin --polytope-info-out info.bin
//
// # Configuration
//
// Every flag has a YAML key (see "ipws config init") and an IPWS_*
// environment variable, e.g. IPWS_PROCESSING_LIMIT. Flags win over the
// environment, which wins over the file.
package ipws
