package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	simpleStringPrefix = '+'
	errorPrefix        = '-'
	integerPrefix      = ':'
	bulkStringPrefix   = '$'
	arrayPrefix        = '*'
)

const (
	// maxBulkLen bounds a single request argument.
	maxBulkLen = 512 * 1024 * 1024
	// maxMultibulkLen bounds the argument count of one request.
	maxMultibulkLen = 1024 * 1024
)

// protocolError marks malformed input; the connection is not recoverable
// after one because the reader has lost its framing.
type protocolError struct {
	msg string
}

func (e *protocolError) Error() string {
	return "Protocol error: " + e.msg
}

func readArray(reader *bufio.Reader) ([]string, error) {
	prefix, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if prefix != arrayPrefix {
		return nil, &protocolError{msg: fmt.Sprintf("expected '*', got '%c'", prefix)}
	}

	line, err := readLine(reader)
	if err != nil {
		return nil, err
	}

	numElems, err := strconv.Atoi(line)
	if err != nil || numElems < 0 || numElems > maxMultibulkLen {
		return nil, &protocolError{msg: "invalid multibulk length"}
	}

	args := make([]string, 0, min(numElems, 64))
	for i := 0; i < numElems; i++ {
		arg, err := readBulkString(reader)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func readBulkString(reader *bufio.Reader) (string, error) {
	prefix, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	if prefix != bulkStringPrefix {
		return "", &protocolError{msg: fmt.Sprintf("expected '$', got '%c'", prefix)}
	}

	line, err := readLine(reader)
	if err != nil {
		return "", err
	}

	length, err := strconv.Atoi(line)
	if err != nil || length > maxBulkLen {
		return "", &protocolError{msg: "invalid bulk length"}
	}
	if length < 0 {
		return "", nil
	}

	buf := make([]byte, length+2)
	if _, err = io.ReadFull(reader, buf); err != nil {
		return "", err
	}
	if buf[length] != '\r' || buf[length+1] != '\n' {
		return "", &protocolError{msg: "bulk string not terminated by CRLF"}
	}
	return string(buf[:length]), nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(line, "\r\n") {
		return "", &protocolError{msg: "line not terminated by CRLF"}
	}
	return line[:len(line)-2], nil
}

func isProtocolError(err error) bool {
	var perr *protocolError
	return errors.As(err, &perr)
}

func writeSimpleString(w io.Writer, s string) {
	w.Write([]byte(string(simpleStringPrefix) + s + "\r\n"))
}

func writeError(w io.Writer, msg string) {
	w.Write([]byte(string(errorPrefix) + msg + "\r\n"))
}

func writeInteger(w io.Writer, n int64) {
	w.Write([]byte(string(integerPrefix) + strconv.FormatInt(n, 10) + "\r\n"))
}

func writeBulkString(w io.Writer, s string) {
	w.Write([]byte(string(bulkStringPrefix) + strconv.Itoa(len(s)) + "\r\n" + s + "\r\n"))
}

func writeNull(w io.Writer) {
	w.Write([]byte("$-1\r\n"))
}

func writeArrayHeader(w io.Writer, n int) {
	w.Write([]byte(string(arrayPrefix) + strconv.Itoa(n) + "\r\n"))
}

// writeNullableArray writes a nil slot as a null bulk string.
func writeNullableArray(w io.Writer, values []*string) {
	writeArrayHeader(w, len(values))
	for _, v := range values {
		if v == nil {
			writeNull(w)
			continue
		}
		writeBulkString(w, *v)
	}
}
