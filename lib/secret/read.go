// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// maxSecretSize bounds what ReadFromPath accepts. Passwords and
// passphrases are short; a larger file is almost certainly the wrong
// path.
const maxSecretSize = 64 << 10

// ReadFromPath reads a password from the file at path, or its first
// line from stdin when path is "-". Surrounding whitespace is trimmed
// and an empty result is an error.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return readLine(os.Stdin, "stdin")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readAll(file, path)
}

func readLine(r io.Reader, source string) (*Buffer, error) {
	reader := bufio.NewReaderSize(io.LimitReader(r, maxSecretSize), 4096)
	line, err := reader.ReadSlice('\n')
	if err != nil && err != io.EOF {
		if err == bufio.ErrBufferFull {
			Zero(line)
			return nil, fmt.Errorf("line from %s is too long", source)
		}
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	data := append([]byte(nil), line...)
	Zero(line)
	return fromData(data, source)
}

func readAll(r io.Reader, source string) (*Buffer, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSecretSize+1))
	if err != nil {
		Zero(data)
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	if len(data) > maxSecretSize {
		Zero(data)
		return nil, fmt.Errorf("%s is larger than %d bytes", source, maxSecretSize)
	}
	return fromData(data, source)
}

// fromData moves the trimmed contents of data into a Buffer and zeroes
// data.
func fromData(data []byte, source string) (*Buffer, error) {
	defer Zero(data)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret in %s is empty", source)
	}
	return NewFromBytes(trimmed)
}
