package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/skillsenselab/vaani/errors"
)

// makeWAV builds a PCM16 mono RIFF blob with a 440 Hz tone.
func makeWAV(t *testing.T, seconds float64, sampleRate, channels int) []byte {
	t.Helper()
	frames := int(seconds * float64(sampleRate))
	dataLen := frames * channels * 2

	buf := make([]byte, 0, 44+dataLen)
	le := binary.LittleEndian

	u32 := func(v uint32) []byte { b := make([]byte, 4); le.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); le.PutUint16(b, v); return b }

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(uint32(36+dataLen))...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...) // PCM
	buf = append(buf, u16(uint16(channels))...)
	buf = append(buf, u32(uint32(sampleRate))...)
	buf = append(buf, u32(uint32(sampleRate*channels*2))...)
	buf = append(buf, u16(uint16(channels*2))...)
	buf = append(buf, u16(16)...)
	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(uint32(dataLen))...)

	for i := 0; i < frames; i++ {
		s := int16(10000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			buf = append(buf, u16(uint16(s))...)
		}
	}
	return buf
}

// makeFLAC builds a fLaC marker plus a STREAMINFO block long enough to
// carry the sample rate and total sample count.
func makeFLAC(t *testing.T, seconds float64, rate int) []byte {
	t.Helper()
	total := uint64(seconds * float64(rate))

	buf := make([]byte, 26)
	copy(buf, "fLaC")
	buf[4] = 0x80 // last-metadata flag, block type STREAMINFO
	buf[7] = 34

	info := buf[8:]
	info[10] = byte(rate >> 12)
	info[11] = byte(rate >> 4)
	info[12] = byte((rate & 0x0F) << 4)
	info[13] = byte((total >> 32) & 0x0F)
	binary.BigEndian.PutUint32(info[14:], uint32(total))
	return buf
}

// makeMP3 builds a constant-bitrate MPEG1 Layer III stream: one 128 kbps
// frame header followed by filler sized to the wanted duration.
func makeMP3(t *testing.T, seconds float64) []byte {
	t.Helper()
	data := make([]byte, int(seconds*128000/8))
	data[0] = 0xFF
	data[1] = 0xFB
	data[2] = 0x90 // bitrate index 9 (128 kbps), 44.1 kHz
	return data
}

// makeOGGOpus builds an OpusHead identification page plus a closing page
// whose granule position encodes the duration at 48 kHz.
func makeOGGOpus(t *testing.T, seconds float64) []byte {
	t.Helper()

	first := make([]byte, 27)
	copy(first, "OggS")
	first[26] = 1
	first = append(first, 19)
	id := make([]byte, 19)
	copy(id, "OpusHead")
	first = append(first, id...)

	last := make([]byte, 27)
	copy(last, "OggS")
	last[5] = 0x04 // end-of-stream page
	binary.LittleEndian.PutUint64(last[6:], uint64(seconds*48000))

	return append(first, last...)
}

// makeM4A builds an ftyp box and a moov/mvhd pair with a millisecond
// timescale.
func makeM4A(t *testing.T, seconds float64) []byte {
	t.Helper()

	mvhd := make([]byte, 28)
	binary.BigEndian.PutUint32(mvhd, 28)
	copy(mvhd[4:], "mvhd")
	binary.BigEndian.PutUint32(mvhd[20:], 1000)
	binary.BigEndian.PutUint32(mvhd[24:], uint32(seconds*1000))

	moov := make([]byte, 8, 8+len(mvhd))
	binary.BigEndian.PutUint32(moov, uint32(8+len(mvhd)))
	copy(moov[4:], "moov")
	moov = append(moov, mvhd...)

	ftyp := make([]byte, 16)
	binary.BigEndian.PutUint32(ftyp, 16)
	copy(ftyp[4:], "ftypM4A ")
	return append(ftyp, moov...)
}

func TestDecodeWAV(t *testing.T) {
	data := makeWAV(t, 1.0, 16000, 1)
	buf, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if buf.SampleRate != 16000 {
		t.Errorf("SampleRate = %d", buf.SampleRate)
	}
	if got := buf.Duration(); math.Abs(got-1.0) > 0.01 {
		t.Errorf("Duration = %f, want ~1.0", got)
	}
	for _, s := range buf.Samples[:100] {
		if s < -1 || s > 1 {
			t.Fatalf("sample %f outside [-1,1]", s)
		}
	}
}

func TestDecodeWAVStereoDownmix(t *testing.T) {
	data := makeWAV(t, 1.0, 16000, 2)
	buf, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if got := buf.Duration(); math.Abs(got-1.0) > 0.01 {
		t.Errorf("Duration = %f, want ~1.0 after downmix", got)
	}
}

func TestDecodeWAVInvalid(t *testing.T) {
	if _, err := DecodeWAV([]byte("definitely not audio data here")); err == nil {
		t.Error("expected error for non-wav bytes")
	}
}

func TestResampleLinear(t *testing.T) {
	in := make([]float32, 44100)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 44100))
	}
	out := ResampleLinear(in, 44100, 16000)
	wantLen := int(float64(len(in)) * 16000.0 / 44100.0)
	if len(out) != wantLen {
		t.Errorf("len = %d, want %d", len(out), wantLen)
	}

	same := ResampleLinear(in, 16000, 16000)
	if len(same) != len(in) {
		t.Errorf("same-rate resample changed length: %d", len(same))
	}
}

func TestDecodePCM16LE(t *testing.T) {
	buf, err := DecodePCM16LE([]byte{0x00, 0x40, 0x00, 0xC0}, 16000)
	if err != nil {
		t.Fatalf("DecodePCM16LE: %v", err)
	}
	if math.Abs(float64(buf.Samples[0]-0.5)) > 0.001 {
		t.Errorf("sample[0] = %f, want 0.5", buf.Samples[0])
	}
	if math.Abs(float64(buf.Samples[1]+0.5)) > 0.001 {
		t.Errorf("sample[1] = %f, want -0.5", buf.Samples[1])
	}

	if _, err := DecodePCM16LE([]byte{0x01}, 16000); err == nil {
		t.Error("expected error for odd-length pcm")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"wav", makeWAV(t, 0.1, 16000, 1), FormatWAV},
		{"mp3 id3", append([]byte("ID3"), make([]byte, 16)...), FormatMP3},
		{"ogg", append([]byte("OggS"), make([]byte, 16)...), FormatOGG},
		{"flac", append([]byte("fLaC"), make([]byte, 16)...), FormatFLAC},
		{"m4a", append([]byte{0, 0, 0, 32}, append([]byte("ftypM4A "), make([]byte, 8)...)...), FormatM4A},
		{"webm", append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 16)...), FormatWebM},
		{"unknown", []byte("plain text, not audio at all"), FormatUnknown},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.data); got != tt.want {
			t.Errorf("%s: DetectFormat = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func newTestValidator() *Validator {
	return NewValidator(Config{})
}

func TestValidateWAV(t *testing.T) {
	v := newTestValidator()
	clip, err := v.Validate("hello.wav", makeWAV(t, 2.0, 44100, 1))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if clip.Format != FormatWAV {
		t.Errorf("Format = %q", clip.Format)
	}
	if clip.Buffer == nil || clip.Buffer.SampleRate != DefaultSampleRate {
		t.Errorf("expected buffer resampled to %d", DefaultSampleRate)
	}
	if math.Abs(clip.DurationSeconds-2.0) > 0.05 {
		t.Errorf("DurationSeconds = %f", clip.DurationSeconds)
	}
}

func TestValidateTooShort(t *testing.T) {
	v := newTestValidator()
	_, err := v.Validate("blip.wav", makeWAV(t, 0.2, 16000, 1))
	if errors.CodeOf(err) != errors.ErrCodeInvalidAudio {
		t.Errorf("err = %v, want INVALID_AUDIO", err)
	}
}

func TestValidateEmptyFile(t *testing.T) {
	v := newTestValidator()
	if _, err := v.Validate("empty.wav", nil); errors.CodeOf(err) != errors.ErrCodeInvalidAudio {
		t.Errorf("err = %v, want INVALID_AUDIO", err)
	}
}

func TestValidateBadExtension(t *testing.T) {
	v := newTestValidator()
	_, err := v.Validate("notes.txt", makeWAV(t, 1.0, 16000, 1))
	if errors.CodeOf(err) != errors.ErrCodeInvalidAudio {
		t.Errorf("err = %v, want INVALID_AUDIO", err)
	}
}

func TestValidateExtensionContentMismatch(t *testing.T) {
	v := newTestValidator()
	_, err := v.Validate("song.mp3", makeWAV(t, 1.0, 16000, 1))
	if errors.CodeOf(err) != errors.ErrCodeInvalidAudio {
		t.Errorf("err = %v, want INVALID_AUDIO for wav bytes named .mp3", err)
	}
}

func TestValidateOversized(t *testing.T) {
	v := NewValidator(Config{MaxUploadSize: "1KB"})
	_, err := v.Validate("big.wav", makeWAV(t, 1.0, 16000, 1))
	if errors.CodeOf(err) != errors.ErrCodePayloadTooLarge {
		t.Errorf("err = %v, want PAYLOAD_TOO_LARGE", err)
	}
}

func TestValidateCompressedDuration(t *testing.T) {
	v := newTestValidator()
	cases := []struct {
		filename string
		data     []byte
	}{
		{"clip.flac", makeFLAC(t, 2.0, 16000)},
		{"clip.mp3", makeMP3(t, 2.0)},
		{"clip.ogg", makeOGGOpus(t, 2.0)},
		{"clip.m4a", makeM4A(t, 2.0)},
	}
	for _, tc := range cases {
		clip, err := v.Validate(tc.filename, tc.data)
		if err != nil {
			t.Fatalf("%s: Validate: %v", tc.filename, err)
		}
		if clip.Buffer != nil {
			t.Errorf("%s: compressed clip should not be decoded locally", tc.filename)
		}
		if math.Abs(clip.DurationSeconds-2.0) > 0.05 {
			t.Errorf("%s: DurationSeconds = %f, want ~2.0", tc.filename, clip.DurationSeconds)
		}
	}
}

func TestValidateCompressedOutOfBounds(t *testing.T) {
	v := newTestValidator()
	cases := []struct {
		filename string
		data     []byte
	}{
		{"long.flac", makeFLAC(t, 400, 16000)},
		{"long.m4a", makeM4A(t, 400)},
		{"blip.ogg", makeOGGOpus(t, 0.1)},
	}
	for _, tc := range cases {
		if _, err := v.Validate(tc.filename, tc.data); errors.CodeOf(err) != errors.ErrCodeInvalidAudio {
			t.Errorf("%s: err = %v, want INVALID_AUDIO", tc.filename, err)
		}
	}
}

func TestValidateCompressedWithoutLength(t *testing.T) {
	// An ID3 tag with no audio frames has no readable duration; such a
	// clip must never reach a backend.
	v := newTestValidator()
	data := append([]byte("ID3"), make([]byte, 64)...)
	if _, err := v.Validate("speech.mp3", data); errors.CodeOf(err) != errors.ErrCodeInvalidAudio {
		t.Errorf("err = %v, want INVALID_AUDIO", err)
	}
}

func TestValidateWebMRejected(t *testing.T) {
	v := newTestValidator()
	data := append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 32)...)
	if _, err := v.Validate("clip.webm", data); errors.CodeOf(err) != errors.ErrCodeInvalidAudio {
		t.Errorf("err = %v, want INVALID_AUDIO for webm upload", err)
	}
}

func TestReadDurationFLAC(t *testing.T) {
	dur, err := readDuration(FormatFLAC, makeFLAC(t, 30, 44100))
	if err != nil {
		t.Fatalf("readDuration: %v", err)
	}
	if math.Abs(dur-30) > 0.01 {
		t.Errorf("dur = %f, want 30", dur)
	}

	if _, err := readDuration(FormatFLAC, []byte("fLaC")); err == nil {
		t.Error("expected error for truncated STREAMINFO")
	}
}

func TestReadDurationMP3SkipsID3(t *testing.T) {
	frames := makeMP3(t, 5.0)
	tag := make([]byte, 10)
	copy(tag, "ID3")
	tag[6], tag[7], tag[8], tag[9] = 0, 0, 0, 0

	dur, err := readDuration(FormatMP3, append(tag, frames...))
	if err != nil {
		t.Fatalf("readDuration: %v", err)
	}
	if math.Abs(dur-5.0) > 0.1 {
		t.Errorf("dur = %f, want ~5.0", dur)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.MaxUploadBytes() != 50*1024*1024 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes())
	}

	bad := Config{MinDurationSeconds: 10, MaxDurationSeconds: 5, MaxUploadSize: "50MB"}
	if err := bad.Validate(); err == nil {
		t.Error("expected inverted duration bounds to fail")
	}
}
