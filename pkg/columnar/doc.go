// Package columnar persists weight-system datasets as Apache Parquet files.
//
// # Overview
//
// Every classification tier of a dataset is written to its own file. The
// schema of a tier file is a pure function of (dimension, tier, derived) and
// is produced by polytope.Fields, the same builder the binary reader uses, so
// writer and reader can never disagree on the column layout:
//
//	weight0 .. weight{d-1}                       every tier
//	vertex_count facet_count point_count         non-reflexive and reflexive
//	dual_point_count h11 .. h1{d-3}              reflexive
//	h22 euler_characteristic                     reflexive, d = 6, derived
//
// All columns are required INT32. Files are self-describing through four
// key-value metadata entries:
//
//	ip         "true" / "false"
//	reflexive  "true" / "false"
//	dimension  decimal integer
//	index      "n" or "n/d"
//
// # Writing
//
// Columns are written independently per row group of at most
// WriterConfig.RowGroupSize rows, ZSTD compressed, Parquet format 2.x with
// data page v2:
//
//	err := columnar.WriteDataset(ds, columnar.TierPaths{
//	    polytope.Reflexive: "reflexive.parquet",
//	}, columnar.DefaultWriterConfig())
//
// # Reading
//
// ReadShards reads any number of tier files sequentially and appends them to
// one dataset, routing each file by its ip/reflexive metadata:
//
//	ds, err := columnar.ReadShards(paths, columnar.ReadOptions{Limit: 1000})
//
// # Vertex files
//
// Polytopes parsed from PALP text are stored with their vertex coordinates in
// a two-level list column (see EncodeLevels) next to the per-polytope counts
// and Hodge numbers; WriteVertexFile and ReadVertexFile handle that layout.
package columnar
