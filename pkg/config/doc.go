// Package config provides configuration management for ipws.
//
// A single Config structure covers every command. It is organized into
// sections:
//
//   - Input: binary pair, Parquet shards or PALP text to read
//   - Output: binary pair, tier shards or vertex file to write
//   - Processing: limit, derived quantities, row groups, compression
//   - Observability: log level and format, metrics file, tracing
//   - Storage: optional S3 upload of Parquet outputs
//
// # Usage
//
//	cfg, err := config.Load("ipws.yaml")
//	if err != nil {
//		return err
//	}
//
// Load starts from Default, so a file only needs the keys it changes.
//
// # Environment Variable Substitution
//
// ${VAR_NAME} references in the YAML file are replaced before parsing:
//
//	storage:
//	  upload_uri: s3://${IPWS_BUCKET}/runs
//
// The command-line tool additionally layers IPWS_* environment variables and
// flags over the file.
package config
