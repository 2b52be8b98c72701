// Package otp generates the one-time codes sent over SMS.
package otp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// CodeLength is the number of digits in every issued code.
const CodeLength = 6

const codeSpace = 1000000

// GenerateCode returns a uniformly random 6-digit code, zero padded.
func GenerateCode() (string, error) {
	var n uint64
	if err := binary.Read(rand.Reader, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n%codeSpace), nil
}
