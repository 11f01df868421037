package audio

import (
	"fmt"

	"github.com/skillsenselab/vaani/errors"
	"github.com/skillsenselab/vaani/util"
)

// Config controls upload validation bounds.
type Config struct {
	// MaxUploadSize is a human-readable size limit, e.g. "50MB".
	MaxUploadSize string `yaml:"max_upload_size" mapstructure:"max_upload_size"`
	// MinDurationSeconds rejects clips shorter than this.
	MinDurationSeconds float64 `yaml:"min_duration_seconds" mapstructure:"min_duration_seconds"`
	// MaxDurationSeconds rejects clips longer than this.
	MaxDurationSeconds float64 `yaml:"max_duration_seconds" mapstructure:"max_duration_seconds"`
	// AllowedFormats lists accepted upload extensions.
	AllowedFormats []string `yaml:"allowed_formats" mapstructure:"allowed_formats"`
	// TargetSampleRate is the rate WAV clips are resampled to.
	TargetSampleRate int `yaml:"target_sample_rate" mapstructure:"target_sample_rate"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.MinDurationSeconds == 0 {
		c.MinDurationSeconds = 0.5
	}
	if c.MaxDurationSeconds == 0 {
		c.MaxDurationSeconds = 300
	}
	if len(c.AllowedFormats) == 0 {
		c.AllowedFormats = append([]string(nil), DefaultAllowedFormats...)
	}
	if c.TargetSampleRate == 0 {
		c.TargetSampleRate = DefaultSampleRate
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MinDurationSeconds < 0 {
		return fmt.Errorf("audio.min_duration_seconds must be >= 0")
	}
	if c.MaxDurationSeconds <= c.MinDurationSeconds {
		return fmt.Errorf("audio.max_duration_seconds must exceed min_duration_seconds")
	}
	if util.ParseSize(c.MaxUploadSize, 0) <= 0 {
		return fmt.Errorf("audio.max_upload_size is invalid: %s", c.MaxUploadSize)
	}
	return nil
}

// MaxUploadBytes returns the configured upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return util.ParseSize(c.MaxUploadSize, 50*1024*1024)
}

// Clip is a validated upload ready for dispatch to a backend.
type Clip struct {
	Filename string
	Format   Format
	Data     []byte
	// Buffer holds decoded mono PCM for WAV uploads; nil for compressed
	// containers, which the backend sidecar decodes itself.
	Buffer *Buffer
	// DurationSeconds is decoded from WAV data or read from the container
	// headers of compressed uploads. Always in validation bounds.
	DurationSeconds float64
}

// Validator enforces upload bounds before any model work happens.
type Validator struct {
	cfg Config
}

// NewValidator creates a validator with the given config.
func NewValidator(cfg Config) *Validator {
	cfg.ApplyDefaults()
	return &Validator{cfg: cfg}
}

// Config returns the validator's effective configuration.
func (v *Validator) Config() Config { return v.cfg }

// Validate checks a single upload and returns the validated clip.
// All failures map to INVALID_AUDIO or PAYLOAD_TOO_LARGE.
func (v *Validator) Validate(filename string, data []byte) (*Clip, error) {
	if len(data) == 0 {
		return nil, errors.InvalidAudio("file is empty")
	}
	if int64(len(data)) > v.cfg.MaxUploadBytes() {
		return nil, errors.PayloadTooLarge(v.cfg.MaxUploadBytes())
	}

	ext := ExtensionOf(filename)
	if !v.extensionAllowed(ext) {
		return nil, errors.InvalidAudio(fmt.Sprintf("unsupported format %q, allowed: %v", ext, v.cfg.AllowedFormats))
	}

	format := DetectFormat(data)
	if format == FormatUnknown {
		return nil, errors.InvalidAudio("unrecognized audio container")
	}
	if !extensionMatches(ext, format) {
		return nil, errors.InvalidAudio(fmt.Sprintf("file extension %q does not match detected %s content", ext, format))
	}

	clip := &Clip{Filename: filename, Format: format, Data: data}

	// Every accepted upload must have a known, in-bounds duration before a
	// backend sees it. WAV is decoded locally; compressed containers report
	// their duration through their headers.
	if format == FormatWAV {
		buf, err := DecodeWAV(data)
		if err != nil {
			return nil, errors.InvalidAudio(fmt.Sprintf("failed to decode wav: %v", err))
		}
		buf = buf.ToSampleRate(v.cfg.TargetSampleRate)
		clip.Buffer = buf
		clip.DurationSeconds = buf.Duration()
	} else {
		dur, err := readDuration(format, data)
		if err != nil {
			return nil, errors.InvalidAudio(fmt.Sprintf("cannot determine %s duration: %v", format, err))
		}
		clip.DurationSeconds = dur
	}

	if err := v.checkDuration(clip.DurationSeconds); err != nil {
		return nil, err
	}
	return clip, nil
}

func (v *Validator) checkDuration(dur float64) error {
	if dur < v.cfg.MinDurationSeconds {
		return errors.InvalidAudio(fmt.Sprintf("duration %.2fs below minimum %.1fs", dur, v.cfg.MinDurationSeconds))
	}
	if dur > v.cfg.MaxDurationSeconds {
		return errors.InvalidAudio(fmt.Sprintf("duration %.2fs exceeds maximum %.0fs", dur, v.cfg.MaxDurationSeconds))
	}
	return nil
}

func (v *Validator) extensionAllowed(ext string) bool {
	for _, a := range v.cfg.AllowedFormats {
		if ext == a {
			return true
		}
	}
	return false
}
