package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// readDuration reads the clip duration from a compressed container's
// headers without a full decode. WAV uploads are decoded instead, so every
// accepted format ends up with a known duration before dispatch.
func readDuration(format Format, data []byte) (float64, error) {
	switch format {
	case FormatFLAC:
		return flacDuration(data)
	case FormatMP3:
		return mp3Duration(data)
	case FormatOGG:
		return oggDuration(data)
	case FormatM4A:
		return m4aDuration(data)
	}
	return 0, fmt.Errorf("no duration reader for %s", format)
}

// flacDuration reads the sample rate and total sample count from the
// mandatory STREAMINFO block that directly follows the fLaC marker.
func flacDuration(data []byte) (float64, error) {
	if len(data) < 26 {
		return 0, fmt.Errorf("truncated STREAMINFO block")
	}
	info := data[8:] // 4 marker bytes + 4 metadata block header bytes
	rate := int(info[10])<<12 | int(info[11])<<4 | int(info[12])>>4
	total := uint64(info[13]&0x0F)<<32 | uint64(binary.BigEndian.Uint32(info[14:18]))
	if rate == 0 || total == 0 {
		return 0, fmt.Errorf("stream length not recorded")
	}
	return float64(total) / float64(rate), nil
}

var (
	mp3BitratesV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	mp3BitratesV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
	mp3Rates      = [4]int{44100, 48000, 32000, 0}
)

// mp3Duration reads the frame count from a Xing/Info header when present,
// falling back to a constant-bitrate estimate from the first frame header.
func mp3Duration(data []byte) (float64, error) {
	start := 0
	if bytes.HasPrefix(data, []byte("ID3")) {
		if len(data) < 10 {
			return 0, fmt.Errorf("truncated ID3 tag")
		}
		// ID3v2 sizes are synchsafe: 7 bits per byte.
		tagSize := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 |
			int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
		start = 10 + tagSize
	}
	for start+4 <= len(data) && !(data[start] == 0xFF && data[start+1]&0xE0 == 0xE0) {
		start++
	}
	if start+4 > len(data) {
		return 0, fmt.Errorf("no frame sync found")
	}

	header := data[start : start+4]
	mpeg1 := header[1]>>3&0x03 == 0x03
	rate := mp3Rates[header[2]>>2&0x03]
	if rate == 0 {
		return 0, fmt.Errorf("reserved sample rate")
	}
	samplesPerFrame := 1152
	if !mpeg1 {
		rate /= 2
		samplesPerFrame = 576
		if header[1]>>3&0x03 == 0x00 { // MPEG 2.5
			rate /= 2
		}
	}

	// A VBR file carries its frame count in a Xing (or Info) header inside
	// the first frame.
	end := start + 200
	if end > len(data) {
		end = len(data)
	}
	for _, tag := range []string{"Xing", "Info"} {
		i := bytes.Index(data[start:end], []byte(tag))
		if i < 0 || start+i+12 > len(data) {
			continue
		}
		flags := binary.BigEndian.Uint32(data[start+i+4:])
		if flags&0x01 != 0 {
			frames := binary.BigEndian.Uint32(data[start+i+8:])
			return float64(frames) * float64(samplesPerFrame) / float64(rate), nil
		}
	}

	bitrates := mp3BitratesV1
	if !mpeg1 {
		bitrates = mp3BitratesV2
	}
	kbps := bitrates[header[2]>>4]
	if kbps == 0 {
		return 0, fmt.Errorf("free-format bitrate")
	}
	return float64(len(data)-start) * 8 / float64(kbps*1000), nil
}

// oggDuration combines the codec sample rate from the identification header
// with the granule position of the stream's last page.
func oggDuration(data []byte) (float64, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	var rate int
	if i := bytes.Index(head, []byte("\x01vorbis")); i >= 0 && i+16 <= len(data) {
		rate = int(binary.LittleEndian.Uint32(data[i+12:]))
	} else if bytes.Contains(head, []byte("OpusHead")) {
		rate = 48000 // opus granule positions are always at 48 kHz
	}
	if rate <= 0 {
		return 0, fmt.Errorf("unknown codec")
	}

	last := bytes.LastIndex(data, []byte("OggS"))
	if last < 0 || last+14 > len(data) {
		return 0, fmt.Errorf("no closing page")
	}
	granule := binary.LittleEndian.Uint64(data[last+6:])
	if granule == 0 || granule == ^uint64(0) {
		return 0, fmt.Errorf("stream length not recorded")
	}
	return float64(granule) / float64(rate), nil
}

// m4aDuration walks the top-level boxes to moov/mvhd and reads the movie
// timescale and duration.
func m4aDuration(data []byte) (float64, error) {
	moov, err := findBox(data, "moov")
	if err != nil {
		return 0, err
	}
	mvhd, err := findBox(moov[8:], "mvhd")
	if err != nil {
		return 0, err
	}
	if len(mvhd) < 28 {
		return 0, fmt.Errorf("truncated mvhd box")
	}

	var timescale, duration uint64
	switch {
	case mvhd[8] == 0 && len(mvhd) >= 28:
		timescale = uint64(binary.BigEndian.Uint32(mvhd[20:]))
		duration = uint64(binary.BigEndian.Uint32(mvhd[24:]))
	case mvhd[8] == 1 && len(mvhd) >= 40:
		timescale = uint64(binary.BigEndian.Uint32(mvhd[28:]))
		duration = binary.BigEndian.Uint64(mvhd[32:])
	default:
		return 0, fmt.Errorf("unsupported mvhd layout")
	}
	if timescale == 0 || duration == 0 {
		return 0, fmt.Errorf("stream length not recorded")
	}
	return float64(duration) / float64(timescale), nil
}

// findBox scans sibling MP4 boxes for the named one and returns it whole,
// header included.
func findBox(data []byte, name string) ([]byte, error) {
	for off := 0; off+8 <= len(data); {
		size := int(binary.BigEndian.Uint32(data[off:]))
		if size < 8 || off+size > len(data) {
			return nil, fmt.Errorf("malformed box at offset %d", off)
		}
		if string(data[off+4:off+8]) == name {
			return data[off : off+size], nil
		}
		off += size
	}
	return nil, fmt.Errorf("%s box not found", name)
}
