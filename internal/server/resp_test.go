package server

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadArrayRejectsBadLengths(t *testing.T) {
	for _, input := range []string{
		"*9223372036854775807\r\n",
		"*1048577\r\n",
		"*-1\r\n",
		"*x\r\n",
	} {
		_, err := readArray(bufio.NewReader(strings.NewReader(input)))
		require.Error(t, err, input)
		assert.True(t, isProtocolError(err), input)
		assert.Contains(t, err.Error(), "invalid multibulk length")
	}
}

func TestReadArray(t *testing.T) {
	args, err := readArray(bufio.NewReader(strings.NewReader("*2\r\n$3\r\nGET\r\n$0\r\n\r\n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", ""}, args)
}

func TestWriteHelpers(t *testing.T) {
	var b strings.Builder
	writeSimpleString(&b, "OK")
	writeError(&b, "ERR boom")
	writeInteger(&b, -2)
	writeBulkString(&b, "")
	writeNullableArray(&b, []*string{nil})
	assert.Equal(t, "+OK\r\n-ERR boom\r\n:-2\r\n$0\r\n\r\n*1\r\n$-1\r\n", b.String())
}
