// File: pkg/combine/binary.go
package combine

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// SniffSize is the number of leading bytes inspected by IsBinary.
const SniffSize = 1024

// IsBinary reports whether the file at filePath looks binary.
// It reads at most SniffSize bytes from the start of the file and treats
// the file as binary if any of the bytes read is zero.
func IsBinary(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	return isBinaryReader(file)
}

// isBinaryReader keeps reading until SniffSize bytes are buffered or the
// reader is exhausted.
func isBinaryReader(r io.Reader) (bool, error) {
	buffer := make([]byte, SniffSize)
	total := 0
	for total < SniffSize {
		n, err := r.Read(buffer[total:])
		if bytes.IndexByte(buffer[total:total+n], 0) >= 0 {
			return true, nil
		}
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			break
		}
	}
	return false, nil
}
