package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/ipws/pkg/config"
)

// ExampleDefault demonstrates the defaults applied to every run.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Row group size: %d\n", cfg.Processing.RowGroupSize)
	fmt.Printf("Compression level: %d\n", cfg.Processing.CompressionLevel)
	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)

	// Output:
	// Row group size: 5000000
	// Compression level: 5
	// Log level: info
}

// ExampleConfig_Validate shows how to validate a configuration before a run.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Input.WeightsIn = "ws.bin"
	cfg.Input.InfoIn = "info.bin"
	cfg.Output.ParquetReflexiveOut = "reflexive.parquet"
	cfg.Processing.IncludeDerivedQuantities = true

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Configuration is valid!")
	fmt.Println("Binary input:", cfg.Input.HasBinaryInput())

	// Output:
	// Configuration is valid!
	// Binary input: true
}
