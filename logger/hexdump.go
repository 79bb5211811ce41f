package logger

import (
	"fmt"
	"strings"
)

// MaxLogInfoSize bounds how many bytes HexDump will render, matching
// MAX_LOG_INFO_SIZE in the original logger contract.
const MaxLogInfoSize = 4096

// HexDump formats up to MaxLogInfoSize bytes of data, bytesPerLine per row,
// with a space between bytes when spaced is true, and logs the result at Info.
func (l *Logger) HexDump(prefix string, data []byte, bytesPerLine int, spaced bool) {
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}
	if len(data) > MaxLogInfoSize {
		data = data[:MaxLogInfoSize]
	}
	var b strings.Builder
	sep := ""
	if spaced {
		sep = " "
	}
	for i := 0; i < len(data); i += bytesPerLine {
		end := i + bytesPerLine
		if end > len(data) {
			end = len(data)
		}
		row := data[i:end]
		parts := make([]string, len(row))
		for j, c := range row {
			parts[j] = fmt.Sprintf("%02x", c)
		}
		b.WriteString(strings.Join(parts, sep))
		b.WriteByte('\n')
	}
	l.Info("%s hexdump (%d bytes):\n%s", prefix, len(data), b.String())
}
