package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// DefaultSampleRate is the canonical rate used when a payload does not carry
// its own.
const DefaultSampleRate = 16000

// EncodeWAVPCM16LE wraps raw PCM16LE mono audio bytes in a WAV container.
func EncodeWAVPCM16LE(pcm []byte, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWAVPCM16LETo(&buf, pcm, sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAVPCM16LEFile writes raw PCM16LE mono audio bytes as a WAV file.
func WriteWAVPCM16LEFile(path string, pcm []byte, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteWAVPCM16LETo(f, pcm, sampleRate)
}

// WriteWAVPCM16LETo writes raw PCM16LE mono audio bytes to out as a WAV stream.
func WriteWAVPCM16LETo(out io.Writer, pcm []byte, sampleRate int) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	w := bufio.NewWriter(out)

	// RIFF header.
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk.
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(audioFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(numChannels)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	// data chunk.
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	return w.Flush()
}

// DecodeWAV parses a PCM16LE WAV payload and returns mono samples plus the
// sample rate. Stereo input is downmixed by averaging channel pairs.
func DecodeWAV(data []byte) (pcm []byte, sampleRate int, err error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE payload")
	}

	var (
		channels      int
		bitsPerSample int
		raw           []byte
	)
	off := 12
	for off+8 <= len(data) {
		chunkID := string(data[off : off+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+chunkSize > len(data) {
			return nil, 0, fmt.Errorf("truncated %q chunk", chunkID)
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, fmt.Errorf("short fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			if format != 1 {
				return nil, 0, fmt.Errorf("unsupported audio format %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			raw = data[body : body+chunkSize]
		}
		// Chunks are word aligned.
		off = body + chunkSize + chunkSize%2
	}

	if sampleRate <= 0 || channels <= 0 {
		return nil, 0, fmt.Errorf("missing fmt chunk")
	}
	if bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d (want 16)", bitsPerSample)
	}
	if raw == nil {
		return nil, 0, fmt.Errorf("missing data chunk")
	}

	switch channels {
	case 1:
		return raw, sampleRate, nil
	case 2:
		mono := make([]byte, 0, len(raw)/2)
		for i := 0; i+3 < len(raw); i += 4 {
			l := int16(binary.LittleEndian.Uint16(raw[i : i+2]))
			r := int16(binary.LittleEndian.Uint16(raw[i+2 : i+4]))
			m := int16((int32(l) + int32(r)) / 2)
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], uint16(m))
			mono = append(mono, b[0], b[1])
		}
		return mono, sampleRate, nil
	default:
		return nil, 0, fmt.Errorf("unsupported channel count %d", channels)
	}
}

// TranscodeToCanonicalWAV normalizes an uploaded WAV payload to the canonical
// container: PCM16LE, mono, original sample rate.
func TranscodeToCanonicalWAV(data []byte) ([]byte, error) {
	pcm, rate, err := DecodeWAV(data)
	if err != nil {
		return nil, err
	}
	return EncodeWAVPCM16LE(pcm, rate)
}
