package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

func TestDisabledTracer(t *testing.T) {
	tr, err := NewTracer(TracingConfig{ServiceName: "ipws"})
	require.NoError(t, err)

	_, span := tr.Start(context.Background(), "read")
	span.SetAttribute("records", 3)
	span.End(nil)
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestStdoutTracer(t *testing.T) {
	var buf bytes.Buffer
	tr, err := NewTracer(TracingConfig{Enabled: true, ServiceName: "ipws", ServiceVersion: "test", Output: &buf})
	require.NoError(t, err)

	ctx, parent := tr.Start(context.Background(), "convert")
	_, child := tr.Start(ctx, "merge")
	child.SetAttribute("records", uint64(7))
	child.End(nil)
	parent.End(errors.New(errors.ErrorTypeFormat, "invalid classification tag"))
	require.NoError(t, tr.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name":"merge"`)
	assert.Contains(t, out, `"Name":"convert"`)
	assert.Contains(t, out, "invalid classification tag")
	assert.Contains(t, out, `"Value":"format"`)
}
