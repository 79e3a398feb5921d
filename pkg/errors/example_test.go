// Package errors provides examples of structured error handling in ipws.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

// Example demonstrates basic error creation with context.
func Example() {
	err := errors.New(errors.ErrorTypeFormat, "invalid classification tag").
		WithDetail("tag", 7).
		WithDetail("record", 1234)

	fmt.Println(err.Error())

	// Output:
	// format: invalid classification tag
}

// ExampleWrap shows how to wrap an I/O failure with the failing path.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeFile, "failed to read weights").
		WithDetail("path", "ws.bin")

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Original error was unexpected EOF")
	}

	// Output:
	// This is a file error
	// Original error was unexpected EOF
}

// ExampleIsType demonstrates that error kinds survive re-wrapping.
func ExampleIsType() {
	overflow := errors.New(errors.ErrorTypeOverflow, "varint exceeds 32 bits")
	err := errors.Wrap(overflow, errors.ErrorTypeFormat, "failed to decode polytope info")

	fmt.Println(errors.IsType(err, errors.ErrorTypeFormat))
	fmt.Println(errors.IsType(err, errors.ErrorTypeOverflow))
	fmt.Println(errors.IsType(err, errors.ErrorTypeFile))

	// Output:
	// true
	// true
	// false
}
