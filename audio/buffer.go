package audio

// DefaultSampleRate is the sample rate every backend consumes.
const DefaultSampleRate = 16000

// Buffer holds mono float32 PCM samples at a known sample rate.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// ToSampleRate returns a buffer resampled to the given rate. The receiver is
// returned unchanged when it already matches.
func (b *Buffer) ToSampleRate(rate int) *Buffer {
	if b.SampleRate == rate {
		return b
	}
	return &Buffer{
		Samples:    ResampleLinear(b.Samples, b.SampleRate, rate),
		SampleRate: rate,
	}
}
