package audio

import (
	"bytes"
	"errors"
	"io"

	"github.com/go-audio/wav"
)

// DecodeWAV decodes a WAV blob into a mono float32 buffer at the source
// sample rate. Multi-channel audio is downmixed by averaging channels.
func DecodeWAV(b []byte) (*Buffer, error) {
	r := bytes.NewReader(b)
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return nil, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty wav buffer")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	maxInt := 1 << (bitDepth - 1)
	if maxInt <= 0 {
		maxInt = 32768
	}
	scale := float32(maxInt)

	channels := int(dec.NumChans)
	if channels <= 0 && buf.Format != nil {
		channels = buf.Format.NumChannels
	}
	if channels <= 0 {
		channels = 1
	}

	// Interleaved frames; downmix to mono.
	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]) / scale
		}
		out[i] = sum / float32(channels)
	}

	sr := int(dec.SampleRate)
	if sr == 0 && buf.Format != nil {
		sr = buf.Format.SampleRate
	}
	if sr == 0 {
		sr = DefaultSampleRate
	}
	return &Buffer{Samples: out, SampleRate: sr}, nil
}

// DecodePCM16LE converts little-endian PCM16 bytes into a float32 buffer at
// the given sample rate.
func DecodePCM16LE(b []byte, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if len(b)%2 != 0 {
		return nil, errors.New("pcm16 length must be even")
	}
	out := make([]float32, len(b)/2)
	for i := 0; i < len(out); i++ {
		v := int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
		out[i] = float32(v) / 32768.0
	}
	return &Buffer{Samples: out, SampleRate: sampleRate}, nil
}

// ResampleLinear resamples float32 PCM from inRate to outRate using linear
// interpolation.
func ResampleLinear(samples []float32, inRate, outRate int) []float32 {
	if inRate <= 0 || outRate <= 0 || inRate == outRate || len(samples) == 0 {
		if inRate == outRate {
			return append([]float32(nil), samples...)
		}
		return samples
	}
	ratio := float64(outRate) / float64(inRate)
	outLen := int(float64(len(samples)) * ratio)
	if outLen <= 1 {
		outLen = 1
	}
	out := make([]float32, outLen)
	for i := 0; i < outLen; i++ {
		srcPos := float64(i) / ratio
		i0 := int(srcPos)
		if i0 >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(srcPos - float64(i0))
		s0 := samples[i0]
		s1 := samples[i0+1]
		out[i] = s0 + (s1-s0)*frac
	}
	return out
}
