package config

import (
	"strings"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

// Config is the complete configuration of an ipws run. Sections mirror the
// command-line flags; a YAML file, IPWS_* environment variables and flags
// all populate the same structure.
type Config struct {
	// Input selects the source data
	Input InputConfig `yaml:"input" json:"input" mapstructure:"input"`

	// Output selects the destinations
	Output OutputConfig `yaml:"output" json:"output" mapstructure:"output"`

	// Processing controls how records are read and written
	Processing ProcessingConfig `yaml:"processing" json:"processing" mapstructure:"processing"`

	// Observability controls logs, metrics and traces
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`

	// Storage configures publication of produced files
	Storage StorageConfig `yaml:"storage" json:"storage" mapstructure:"storage"`
}

// InputConfig names the input files. Either the binary pair or at least
// one Parquet shard drives the ipws command; PALPIn drives the palp command.
type InputConfig struct {
	// WeightsIn is the binary weight system file
	WeightsIn string `yaml:"weights_in" json:"weights_in" mapstructure:"weights_in"`
	// InfoIn is the binary polytope info file matching WeightsIn
	InfoIn string `yaml:"info_in" json:"info_in" mapstructure:"info_in"`
	// ParquetIn lists tier shards, read in order
	ParquetIn []string `yaml:"parquet_in" json:"parquet_in" mapstructure:"parquet_in"`
	// PALPIn is a PALP text file
	PALPIn string `yaml:"palp_in" json:"palp_in" mapstructure:"palp_in"`
	// MemoryMap maps uncompressed binary inputs instead of streaming them
	MemoryMap bool `yaml:"memory_map" json:"memory_map" mapstructure:"memory_map"`
}

// OutputConfig names the output files. Empty paths are skipped.
type OutputConfig struct {
	WeightsOut             string `yaml:"weights_out" json:"weights_out" mapstructure:"weights_out"`
	InfoOut                string `yaml:"info_out" json:"info_out" mapstructure:"info_out"`
	ParquetNonIPOut        string `yaml:"parquet_non_ip_out" json:"parquet_non_ip_out" mapstructure:"parquet_non_ip_out"`
	ParquetNonReflexiveOut string `yaml:"parquet_non_reflexive_out" json:"parquet_non_reflexive_out" mapstructure:"parquet_non_reflexive_out"`
	ParquetReflexiveOut    string `yaml:"parquet_reflexive_out" json:"parquet_reflexive_out" mapstructure:"parquet_reflexive_out"`
	// ParquetOut is the vertex file written by the palp command
	ParquetOut string `yaml:"parquet_out" json:"parquet_out" mapstructure:"parquet_out"`
}

// ProcessingConfig controls record handling
type ProcessingConfig struct {
	// Limit caps the records read from each input file (0 = unlimited)
	Limit int `yaml:"limit" json:"limit" mapstructure:"limit"`
	// IncludeDerivedQuantities adds h22 and the Euler characteristic to
	// dimension 6 reflexive output
	IncludeDerivedQuantities bool `yaml:"include_derived_quantities" json:"include_derived_quantities" mapstructure:"include_derived_quantities"`
	// RowGroupSize bounds the rows per Parquet row group
	RowGroupSize int `yaml:"row_group_size" json:"row_group_size" mapstructure:"row_group_size"`
	// CompressionLevel is the ZSTD level of Parquet column chunks
	CompressionLevel int `yaml:"compression_level" json:"compression_level" mapstructure:"compression_level"`
	// BinaryCompressionLevel applies when a binary output path carries a
	// compression extension (1-9)
	BinaryCompressionLevel int `yaml:"binary_compression_level" json:"binary_compression_level" mapstructure:"binary_compression_level"`
	// StrictShards rejects Parquet shards with differing indices
	StrictShards bool `yaml:"strict_shards" json:"strict_shards" mapstructure:"strict_shards"`
}

// ObservabilityConfig contains monitoring settings
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogFormat is json or console
	LogFormat string `yaml:"log_format" json:"log_format" mapstructure:"log_format"`
	// MetricsFile receives the run's metrics in Prometheus text format
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
	// Tracing prints pipeline spans to stderr
	Tracing bool `yaml:"tracing" json:"tracing" mapstructure:"tracing"`
}

// StorageConfig configures object-store upload of Parquet outputs
type StorageConfig struct {
	// UploadURI is an s3://bucket/prefix destination; empty disables upload
	UploadURI string `yaml:"upload_uri" json:"upload_uri" mapstructure:"upload_uri"`
	// Region overrides the AWS region of the default credential chain
	Region string `yaml:"region" json:"region" mapstructure:"region"`
	// Endpoint targets an S3-compatible service instead of AWS
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	return &Config{
		Input: InputConfig{
			ParquetIn: []string{},
		},
		Processing: ProcessingConfig{
			RowGroupSize:           5_000_000,
			CompressionLevel:       5,
			BinaryCompressionLevel: 5,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	p := c.Processing
	switch {
	case p.Limit < 0:
		return invalid("processing.limit", p.Limit, "limit cannot be negative")
	case p.RowGroupSize <= 0:
		return invalid("processing.row_group_size", p.RowGroupSize, "row_group_size must be positive")
	case p.CompressionLevel < 1 || p.CompressionLevel > 22:
		return invalid("processing.compression_level", p.CompressionLevel, "compression_level must be between 1 and 22")
	case p.BinaryCompressionLevel < 1 || p.BinaryCompressionLevel > 9:
		return invalid("processing.binary_compression_level", p.BinaryCompressionLevel, "binary_compression_level must be between 1 and 9")
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("observability.log_level", c.Observability.LogLevel, "unknown log level")
	}
	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return invalid("observability.log_format", c.Observability.LogFormat, "log_format must be json or console")
	}

	if u := c.Storage.UploadURI; u != "" && !strings.HasPrefix(u, "s3://") {
		return invalid("storage.upload_uri", u, "upload_uri must be an s3:// URI")
	}
	return nil
}

// HasBinaryInput reports whether both binary input files are set
func (i *InputConfig) HasBinaryInput() bool {
	return i.WeightsIn != "" && i.InfoIn != ""
}

// HasParquetInput reports whether any Parquet shard is set
func (i *InputConfig) HasParquetInput() bool {
	return len(i.ParquetIn) > 0
}

func invalid(key string, value interface{}, msg string) error {
	return errors.New(errors.ErrorTypeConfig, msg).WithDetail("key", key).WithDetail("value", value)
}
