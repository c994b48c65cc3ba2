// Package mp3parser reads MPEG audio Layer III frame headers
package mp3parser

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrNoFrames = errors.New("no MPEG Layer III frames found")

// MPEG versions as encoded in the frame header
const (
	MPEG25 = 0
	MPEG2  = 2
	MPEG1  = 3
)

// ChannelMono is the channel mode of single channel frames
const ChannelMono = 3

// ID3v2Header represents ID3v2 tag header
type ID3v2Header struct {
	Version [2]byte
	Flags   byte
	Size    int
}

// FrameHeader represents a Layer III frame header
type FrameHeader struct {
	Version     int
	Bitrate     int
	SampleRate  int
	Padding     bool
	ChannelMode int
	FrameLength int
}

// SamplesPerFrame is the number of PCM frames one MPEG frame decodes to.
func (h *FrameHeader) SamplesPerFrame() int {
	if h.Version == MPEG1 {
		return 1152
	}
	return 576
}

// Channels is 1 for mono frames and 2 for the stereo modes.
func (h *FrameHeader) Channels() int {
	if h.ChannelMode == ChannelMono {
		return 1
	}
	return 2
}

// StreamInfo summarizes the frames of an MP3 file.
type StreamInfo struct {
	ID3v2          *ID3v2Header
	Frames         int
	SampleRate     int
	Channels       int
	AverageBitrate int
	// Samples is the PCM frame count the stream decodes to.
	Samples int
}

var (
	mpeg1Bitrates = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	mpeg2Bitrates = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
	mpeg1Rates    = [4]int{44100, 48000, 32000, 0}
)

// read syncsafe int for ID3v2 size
func syncSafeToInt(b []byte) int {
	return int(b[0]&0x7F)<<21 |
		int(b[1]&0x7F)<<14 |
		int(b[2]&0x7F)<<7 |
		int(b[3]&0x7F)
}

// ReadID3v2 returns the ID3v2 header at the start of data, if any, and the
// offset of the first byte after the tag.
func ReadID3v2(data []byte) (*ID3v2Header, int, error) {
	if len(data) < 10 || string(data[:3]) != "ID3" {
		return nil, 0, nil
	}

	h := &ID3v2Header{
		Version: [2]byte{data[3], data[4]},
		Flags:   data[5],
		Size:    syncSafeToInt(data[6:10]),
	}
	end := 10 + h.Size
	if end > len(data) {
		return nil, 0, fmt.Errorf("ID3v2 tag of %d bytes exceeds file size %d", h.Size, len(data))
	}
	return h, end, nil
}

// ParseFrameHeader decodes a 4-byte Layer III frame header.
func ParseFrameHeader(b []byte) (*FrameHeader, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("short frame header: %d bytes", len(b))
	}
	header := binary.BigEndian.Uint32(b)

	// check sync
	if (header & 0xFFE00000) != 0xFFE00000 {
		return nil, fmt.Errorf("invalid sync word: 0x%08X", header)
	}

	version := int((header >> 19) & 0x3)
	layer := int((header >> 17) & 0x3)
	bitrateIdx := int((header >> 12) & 0xF)
	sampleRateIdx := int((header >> 10) & 0x3)
	padding := ((header >> 9) & 0x1) == 1
	channelMode := int((header >> 6) & 0x3)

	if version == 1 {
		return nil, fmt.Errorf("reserved MPEG version")
	}
	if layer != 1 {
		return nil, fmt.Errorf("not Layer III (layer bits %d)", layer)
	}

	bitrate := mpeg1Bitrates[bitrateIdx] * 1000
	sampleRate := mpeg1Rates[sampleRateIdx]
	coefficient := 144
	switch version {
	case MPEG2:
		bitrate = mpeg2Bitrates[bitrateIdx] * 1000
		sampleRate /= 2
		coefficient = 72
	case MPEG25:
		bitrate = mpeg2Bitrates[bitrateIdx] * 1000
		sampleRate /= 4
		coefficient = 72
	}

	if bitrate == 0 || sampleRate == 0 {
		return nil, fmt.Errorf("unsupported bitrate or samplerate")
	}

	return &FrameHeader{
		Version:     version,
		Bitrate:     bitrate,
		SampleRate:  sampleRate,
		Padding:     padding,
		ChannelMode: channelMode,
		FrameLength: (coefficient*bitrate)/sampleRate + btoi(padding),
	}, nil
}

// Probe walks the frames of an MP3 file without decoding them. Bytes that
// do not start a complete frame are skipped one at a time.
func Probe(data []byte) (*StreamInfo, error) {
	id3v2, pos, err := ReadID3v2(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read ID3v2: %w", err)
	}

	info := &StreamInfo{ID3v2: id3v2}
	bitrateSum := 0

	for pos+4 <= len(data) {
		if data[pos] != 0xFF || data[pos+1]&0xE0 != 0xE0 {
			pos++
			continue
		}
		h, err := ParseFrameHeader(data[pos:])
		if err != nil || pos+h.FrameLength > len(data) {
			pos++
			continue
		}

		if info.Frames == 0 {
			info.SampleRate = h.SampleRate
			info.Channels = h.Channels()
		}
		info.Frames++
		info.Samples += h.SamplesPerFrame()
		bitrateSum += h.Bitrate
		pos += h.FrameLength
	}

	if info.Frames == 0 {
		return nil, ErrNoFrames
	}
	info.AverageBitrate = bitrateSum / info.Frames
	return info, nil
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
