package logger

import "strings"

// stripAnsiCodes drops CSI sequences (\x1b[ ... final letter) so themed
// messages land in the log file as plain text
func stripAnsiCodes(s string) string {
	if strings.IndexByte(s, '\x1b') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\x1b' || i+1 >= len(s) || s[i+1] != '[' {
			b.WriteByte(s[i])
			continue
		}

		// skip parameters until the final byte of the sequence
		j := i + 2
		for j < len(s) && !isFinalByte(s[j]) {
			j++
		}
		i = j
	}

	return b.String()
}

func isFinalByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
