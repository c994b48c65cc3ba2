// Package audio converts between audio files and 16-bit PCM buffers
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/sirupsen/logrus"
	"github.com/tosone/minimp3"

	"phase-stego-backend/models"
	"phase-stego-backend/mp3parser"
)

const (
	BitDepth          = 16
	PCMFormat         = 1
	DefaultSampleRate = 44100
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

type AudioDecoder struct {
	logger logrus.FieldLogger
}

func NewAudioDecoder(logger logrus.FieldLogger) *AudioDecoder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AudioDecoder{
		logger: logger.WithField("component", "audio_decoder"),
	}
}

// IsSupported reports whether Decode understands the file extension.
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".mp3", ".flac":
		return true
	}
	return false
}

// Decode picks a decoder from the file extension.
func (ad *AudioDecoder) Decode(data []byte, filename string) (*models.AudioBuffer, *models.AudioMetadata, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".wav":
		return ad.DecodeWAV(data)
	case ".mp3":
		return ad.DecodeMP3(data)
	case ".flac":
		return ad.DecodeFLAC(data)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func (ad *AudioDecoder) DecodeWAV(wavData []byte) (*models.AudioBuffer, *models.AudioMetadata, error) {
	decoder := wav.NewDecoder(bytes.NewReader(wavData))
	if !decoder.IsValidFile() {
		return nil, nil, fmt.Errorf("failed to decode WAV: invalid file")
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	depth := pcm.SourceBitDepth
	if depth == 0 {
		depth = int(decoder.BitDepth)
	}
	channels := int(decoder.NumChans)
	if pcm.Format != nil && pcm.Format.NumChannels > 0 {
		channels = pcm.Format.NumChannels
	}

	samples := make([]int16, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = toInt16(v, depth)
	}

	return ad.buffer(samples, int(decoder.SampleRate), channels, depth)
}

func (ad *AudioDecoder) DecodeMP3(mp3Data []byte) (*models.AudioBuffer, *models.AudioMetadata, error) {
	info, err := mp3parser.Probe(mp3Data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	decoder, data, err := minimp3.DecodeFull(mp3Data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode MP3: %w", err)
	}
	defer decoder.Close()

	// minimp3 yields little-endian 16-bit interleaved PCM
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	sampleRate, channels := mp3Format(decoder.SampleRate, decoder.Channels, info)

	ad.logger.WithFields(logrus.Fields{
		"frames":   info.Frames,
		"bitrate":  info.AverageBitrate,
		"channels": channels,
		"samples":  info.Samples,
	}).Debug("MP3 decoded; stego output will be WAV")

	buf, metadata, err := ad.buffer(samples, sampleRate, channels, BitDepth)
	if err != nil {
		return nil, nil, err
	}
	metadata.Bitrate = info.AverageBitrate
	return buf, metadata, nil
}

// mp3Format prefers the format minimp3 reports and falls back to the one
// read from the frame headers when minimp3 leaves it zero.
func mp3Format(sampleRate, channels int, info *mp3parser.StreamInfo) (int, int) {
	if sampleRate <= 0 {
		sampleRate = info.SampleRate
	}
	if channels < 1 {
		channels = info.Channels
	}
	return sampleRate, channels
}

func (ad *AudioDecoder) DecodeFLAC(flacData []byte) (*models.AudioBuffer, *models.AudioMetadata, error) {
	stream, err := flac.New(bytes.NewReader(flacData))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	depth := int(stream.Info.BitsPerSample)
	channels := int(stream.Info.NChannels)
	samples := make([]int16, 0, int(stream.Info.NSamples)*channels)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, fmt.Errorf("failed to decode FLAC frame: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for _, subframe := range frame.Subframes {
				samples = append(samples, toInt16(int(subframe.Samples[i]), depth))
			}
		}
	}

	return ad.buffer(samples, int(stream.Info.SampleRate), channels, depth)
}

func (ad *AudioDecoder) buffer(samples []int16, sampleRate, channels, depth int) (*models.AudioBuffer, *models.AudioMetadata, error) {
	if channels < 1 {
		return nil, nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if sampleRate <= 0 {
		ad.logger.WithField("default", DefaultSampleRate).Warn("Missing sample rate, using default")
		sampleRate = DefaultSampleRate
	}

	buf := &models.AudioBuffer{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
	}
	metadata := &models.AudioMetadata{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   depth,
		Frames:     buf.Frames(),
		Duration:   float64(buf.Frames()) / float64(sampleRate),
	}

	return buf, metadata, nil
}

// EncodeWAV writes buf as 16-bit PCM WAV.
func (ad *AudioDecoder) EncodeWAV(buf *models.AudioBuffer) ([]byte, error) {
	channels := max(buf.Channels, 1)
	sampleRate := buf.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(s)
	}

	pcm := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: BitDepth,
	}

	out := &seekBuffer{}
	encoder := wav.NewEncoder(out, sampleRate, BitDepth, channels, PCMFormat)
	if err := encoder.Write(pcm); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close WAV encoder: %w", err)
	}

	return out.Bytes(), nil
}

// toInt16 rescales an integer sample of the given bit depth to 16 bits.
// 8-bit WAV samples are unsigned.
func toInt16(v, depth int) int16 {
	switch {
	case depth == 8:
		v = (v - 128) << 8
	case depth > BitDepth:
		v >>= depth - BitDepth
	case depth > 0 && depth < BitDepth:
		v <<= BitDepth - depth
	}

	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

// seekBuffer is an in-memory io.WriteSeeker for wav.Encoder, which seeks
// back to patch the RIFF sizes.
type seekBuffer struct {
	buf []byte
	off int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.off + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	n := copy(s.buf[s.off:], p)
	s.off += n
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var off int
	switch whence {
	case io.SeekStart:
		off = int(offset)
	case io.SeekCurrent:
		off = s.off + int(offset)
	case io.SeekEnd:
		off = len(s.buf) + int(offset)
	default:
		return 0, errors.New("invalid whence")
	}
	if off < 0 {
		return 0, errors.New("negative seek")
	}
	s.off = off
	return int64(off), nil
}

func (s *seekBuffer) Bytes() []byte { return s.buf }
