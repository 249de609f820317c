package speech

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// whisper.cpp expects 16 kHz mono float32 samples.
const wavSampleRate = 16000

var errNotWAV = errors.New("not a RIFF/WAVE file")

// ReadWAV decodes a 16-bit PCM WAV file into mono float32 samples.
// Stereo input is downmixed by averaging channels.
func ReadWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() // nolint:errcheck // read-only handle

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var header [12]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, errNotWAV
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, errNotWAV
	}

	var (
		numChannels   uint16
		bitsPerSample uint16
		haveFmt       bool
	)

	// Walk the chunk list; the data chunk may appear after optional chunks
	// (LIST, fact) emitted by common encoders.
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(f, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, errors.New("wav: missing data chunk")
			}
			return nil, err
		}
		chunkID := string(chunk[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunk[4:8])

		// Declared sizes are attacker-controlled; reject any chunk that
		// claims more bytes than the file actually holds before allocating.
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		if int64(chunkSize) > fi.Size()-pos {
			return nil, fmt.Errorf("wav: chunk %q size %d exceeds file bounds", chunkID, chunkSize)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("wav: fmt chunk too short (%d bytes)", chunkSize)
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, body); err != nil {
				return nil, fmt.Errorf("wav: short fmt chunk: %w", err)
			}
			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			numChannels = binary.LittleEndian.Uint16(body[2:4])
			bitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			if audioFormat != 1 {
				return nil, fmt.Errorf("wav: unsupported audio format %d (want PCM)", audioFormat)
			}
			if bitsPerSample != 16 {
				return nil, fmt.Errorf("wav: unsupported bit depth %d (want 16)", bitsPerSample)
			}
			if numChannels == 0 || numChannels > 2 {
				return nil, fmt.Errorf("wav: unsupported channel count %d", numChannels)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, errors.New("wav: data chunk before fmt chunk")
			}
			raw := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, raw); err != nil {
				return nil, fmt.Errorf("wav: short data chunk: %w", err)
			}
			return pcm16ToFloat32(raw, int(numChannels)), nil
		default:
			// Skip unknown chunks; sizes are padded to even byte counts.
			skip := int64(chunkSize)
			if skip%2 == 1 {
				skip++
			}
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}
}

// pcm16ToFloat32 converts little-endian PCM16 frames to normalized float32
// mono samples, averaging channels when the input is stereo.
func pcm16ToFloat32(raw []byte, channels int) []float32 {
	frameBytes := 2 * channels
	frames := len(raw) / frameBytes
	samples := make([]float32, 0, frames)

	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			off := i*frameBytes + c*2
			v := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			sum += float32(v) / 32768.0
		}
		samples = append(samples, sum/float32(channels))
	}

	return samples
}
