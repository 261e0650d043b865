package ioctx

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	ctx := context.Background()

	data, err := io.ReadAll(StdinFromContext(ctx))
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, io.Discard, StdoutFromContext(ctx))
	assert.Equal(t, io.Discard, StderrFromContext(ctx))
}

func TestWithStdio(t *testing.T) {
	var out, errOut bytes.Buffer
	ctx := WithStdio(context.Background(), strings.NewReader("1+2"), &out, &errOut)

	data, err := io.ReadAll(StdinFromContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, "1+2", string(data))

	_, _ = io.WriteString(StdoutFromContext(ctx), "3\n")
	_, _ = io.WriteString(StderrFromContext(ctx), "oops\n")
	assert.Equal(t, "3\n", out.String())
	assert.Equal(t, "oops\n", errOut.String())
}
