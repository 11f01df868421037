package audio

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies an audio container by its magic bytes.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatOGG     Format = "ogg"
	FormatFLAC    Format = "flac"
	FormatM4A     Format = "m4a"
	FormatWebM    Format = "webm"
	FormatUnknown Format = ""
)

// DefaultAllowedFormats lists the upload containers accepted by default.
// Only containers whose duration can be read up front are allowed; webm is
// detected but rejected because its header carries no reliable duration.
var DefaultAllowedFormats = []string{"wav", "mp3", "ogg", "flac", "m4a", "mpeg"}

// DetectFormat sniffs the container format from the first bytes of data.
// Returns FormatUnknown when no known magic matches.
func DetectFormat(data []byte) Format {
	if len(data) < 12 {
		return FormatUnknown
	}
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOGG
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.Equal(data[4:8], []byte("ftyp")):
		return FormatM4A
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return FormatWebM
	}
	return FormatUnknown
}

// ExtensionOf returns the lowercase extension of filename without the dot.
func ExtensionOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// extensionMatches reports whether the filename extension is consistent with
// the sniffed format. mpeg and mp3 are treated as the same family, as are
// m4a/mp4.
func extensionMatches(ext string, format Format) bool {
	switch format {
	case FormatMP3:
		return ext == "mp3" || ext == "mpeg"
	case FormatM4A:
		return ext == "m4a" || ext == "mp4"
	default:
		return ext == string(format)
	}
}
