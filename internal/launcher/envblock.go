package launcher

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decodeEnvironmentBlock validates and decodes a child's environment block
// captured by the debug pump, per spec.md §4.3: the block is either ANSI
// (on the earliest supported OS version) or the native wide encoding,
// converting to UTF-8 Go strings either way.
//
// wide selects the native wide (UTF-16LE) decode path; when false the block
// is treated as Windows-1252 (a stand-in for "ANSI" on the earliest OS
// version spec.md names).
func decodeEnvironmentBlock(block []byte, wide bool) (map[string]string, error) {
	var text string
	if wide {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(block)
		if err != nil {
			return nil, err
		}
		text = string(decoded)
	} else {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(block)
		if err != nil {
			return nil, err
		}
		text = string(decoded)
	}

	// A Windows environment block is a sequence of NUL-terminated
	// "NAME=VALUE" strings ending in a second NUL.
	out := make(map[string]string)
	for _, entry := range strings.Split(strings.TrimRight(text, "\x00"), "\x00") {
		if entry == "" {
			continue
		}
		idx := strings.IndexByte(entry, '=')
		if idx <= 0 {
			continue // skip drive-letter pseudo-vars like "=C:"
		}
		out[entry[:idx]] = entry[idx+1:]
	}
	return out, nil
}
