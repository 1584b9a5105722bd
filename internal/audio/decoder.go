// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// decoder yields interleaved 16-bit samples. read fills at most len(dst)
// samples and returns io.EOF once nothing is left.
type decoder interface {
	read(dst []int16) (int, error)
	sampleRate() int
	channels() int
	io.Closer
}

// openDecoder detects the format by file extension.
func openDecoder(path string) (decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".mp3", ".flac", ".ogg":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var dec decoder
	switch ext {
	case ".wav":
		dec, err = newWAVDecoder(f)
	case ".mp3":
		dec, err = newMP3Decoder(f)
	case ".flac":
		dec, err = newFLACDecoder(f)
	case ".ogg":
		dec, err = newOGGDecoder(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return dec, nil
}

// clampInt16 saturates v to the int16 range.
func clampInt16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// scaleTo16 shifts a sample of the given bit depth to 16 bits.
func scaleTo16(v, bitDepth int) int16 {
	switch {
	case bitDepth == 8:
		// 8-bit PCM is unsigned
		return clampInt16((v - 128) << 8)
	case bitDepth > 16:
		return clampInt16(v >> (bitDepth - 16))
	case bitDepth < 16:
		return clampInt16(v << (16 - bitDepth))
	default:
		return clampInt16(v)
	}
}

// --- WAV ---

type wavDecoder struct {
	file     *os.File
	dec      *wav.Decoder
	buf      *goaudio.IntBuffer
	bitDepth int
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("WAV header has no format")
	}
	return &wavDecoder{
		file:     f,
		dec:      dec,
		buf:      &goaudio.IntBuffer{Format: dec.Format()},
		bitDepth: int(dec.BitDepth),
	}, nil
}

func (d *wavDecoder) read(dst []int16) (int, error) {
	if cap(d.buf.Data) < len(dst) {
		d.buf.Data = make([]int, len(dst))
	}
	d.buf.Data = d.buf.Data[:len(dst)]

	n, err := d.dec.PCMBuffer(d.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i, v := range d.buf.Data[:n] {
		dst[i] = scaleTo16(v, d.bitDepth)
	}
	return n, nil
}

func (d *wavDecoder) sampleRate() int { return int(d.dec.SampleRate) }
func (d *wavDecoder) channels() int   { return int(d.dec.NumChans) }
func (d *wavDecoder) Close() error    { return d.file.Close() }

// --- MP3 ---

// go-mp3 always produces 16-bit little-endian stereo.
type mp3Decoder struct {
	file *os.File
	dec  *mp3.Decoder
	raw  []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	return &mp3Decoder{file: f, dec: dec}, nil
}

func (d *mp3Decoder) read(dst []int16) (int, error) {
	if cap(d.raw) < 2*len(dst) {
		d.raw = make([]byte, 2*len(dst))
	}
	raw := d.raw[:2*len(dst)]

	n, err := io.ReadFull(d.dec, raw)
	samples := n / 2
	for i := range samples {
		dst[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	if samples == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, err
	}
	return samples, nil
}

func (d *mp3Decoder) sampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) channels() int   { return 2 }
func (d *mp3Decoder) Close() error    { return d.file.Close() }

// --- FLAC ---

type flacDecoder struct {
	file     *os.File
	stream   *flac.Stream
	pending  []int16
	nchans   int
	bitDepth int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, err
	}
	return &flacDecoder{
		file:     f,
		stream:   stream,
		nchans:   int(stream.Info.NChannels),
		bitDepth: int(stream.Info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) read(dst []int16) (int, error) {
	if len(d.pending) == 0 {
		frame, err := d.stream.ParseNext()
		if err != nil {
			return 0, err
		}
		nSamples := frame.Subframes[0].NSamples
		need := nSamples * d.nchans
		if cap(d.pending) < need {
			d.pending = make([]int16, need)
		}
		d.pending = d.pending[:need]
		for i := range nSamples {
			for ch := range d.nchans {
				d.pending[i*d.nchans+ch] = scaleTo16(int(frame.Subframes[ch].Samples[i]), d.bitDepth)
			}
		}
	}
	n := copy(dst, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *flacDecoder) sampleRate() int { return int(d.stream.Info.SampleRate) }
func (d *flacDecoder) channels() int   { return d.nchans }
func (d *flacDecoder) Close() error    { return d.file.Close() }

// --- Ogg Vorbis ---

type oggDecoder struct {
	file    *os.File
	reader  *oggvorbis.Reader
	samples []float32
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, err
	}
	return &oggDecoder{file: f, reader: reader}, nil
}

func (d *oggDecoder) read(dst []int16) (int, error) {
	if cap(d.samples) < len(dst) {
		d.samples = make([]float32, len(dst))
	}
	samples := d.samples[:len(dst)]

	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	for i, s := range samples[:n] {
		dst[i] = clampInt16(int(s * math.MaxInt16))
	}
	return n, nil
}

func (d *oggDecoder) sampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) channels() int   { return d.reader.Channels() }
func (d *oggDecoder) Close() error    { return d.file.Close() }
