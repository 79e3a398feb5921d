package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/ipws/pkg/config"
	"github.com/ajitpratap0/ipws/pkg/errors"
)

// envPrefix namespaces environment overrides, e.g. IPWS_PROCESSING_LIMIT
const envPrefix = "IPWS"

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"ws-in":                      "input.weights_in",
	"polytope-info-in":           "input.info_in",
	"parquet-in":                 "input.parquet_in",
	"palp-in":                    "input.palp_in",
	"memory-map":                 "input.memory_map",
	"ws-out":                     "output.weights_out",
	"polytope-info-out":          "output.info_out",
	"parquet-non-ip-out":         "output.parquet_non_ip_out",
	"parquet-non-reflexive-out":  "output.parquet_non_reflexive_out",
	"parquet-reflexive-out":      "output.parquet_reflexive_out",
	"parquet-out":                "output.parquet_out",
	"limit":                      "processing.limit",
	"include-derived-quantities": "processing.include_derived_quantities",
	"row-group-size":             "processing.row_group_size",
	"compression-level":          "processing.compression_level",
	"binary-compression-level":   "processing.binary_compression_level",
	"strict-shards":              "processing.strict_shards",
	"log-level":                  "observability.log_level",
	"log-format":                 "observability.log_format",
	"metrics-file":               "observability.metrics_file",
	"tracing":                    "observability.tracing",
	"upload-uri":                 "storage.upload_uri",
	"region":                     "storage.region",
	"endpoint":                   "storage.endpoint",
}

// resolveConfig layers the configuration: defaults, then the YAML file,
// then IPWS_* environment variables, then flags the user set explicitly
func resolveConfig(v *viper.Viper, flags *pflag.FlagSet, path string) (*config.Config, error) {
	base := config.Default()
	if path != "" {
		var err error
		if base, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	values, err := toMap(base)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(values); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "merge configuration")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "bind flag").WithDetail("flag", name)
		}
	}

	cfg := &config.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// toMap renders cfg as nested maps keyed like the YAML file so that every
// key is known to viper
func toMap(cfg *config.Config) (map[string]interface{}, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "marshal configuration")
	}
	values := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "unmarshal configuration")
	}
	return values, nil
}
