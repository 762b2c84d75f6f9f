package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00}
	wav, err := EncodeWAVPCM16LE(pcm, 16000)
	if err != nil {
		t.Fatalf("EncodeWAVPCM16LE() error = %v", err)
	}

	gotPCM, rate, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV() error = %v", err)
	}
	if rate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", rate)
	}
	if !bytes.Equal(gotPCM, pcm) {
		t.Fatalf("pcm = %v, want %v", gotPCM, pcm)
	}
}

func TestDecodeWAVRejectsNonRIFF(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("definitely not audio")); err == nil {
		t.Fatalf("DecodeWAV() error = nil, want failure")
	}
}

func TestDecodeWAVDownmixesStereo(t *testing.T) {
	// Two stereo frames: (100, 300) and (-200, 0).
	stereo := make([]byte, 8)
	binary.LittleEndian.PutUint16(stereo[0:2], uint16(int16(100)))
	binary.LittleEndian.PutUint16(stereo[2:4], uint16(int16(300)))
	neg := int16(-200)
	binary.LittleEndian.PutUint16(stereo[4:6], uint16(neg))
	binary.LittleEndian.PutUint16(stereo[6:8], uint16(int16(0)))

	wav := buildWAV(t, stereo, 2, 8000)
	pcm, rate, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV() error = %v", err)
	}
	if rate != 8000 {
		t.Fatalf("sample rate = %d, want 8000", rate)
	}
	if len(pcm) != 4 {
		t.Fatalf("mono pcm length = %d, want 4", len(pcm))
	}
	if got := int16(binary.LittleEndian.Uint16(pcm[0:2])); got != 200 {
		t.Fatalf("frame 0 = %d, want 200", got)
	}
	if got := int16(binary.LittleEndian.Uint16(pcm[2:4])); got != -100 {
		t.Fatalf("frame 1 = %d, want -100", got)
	}
}

func TestTranscodeToCanonicalWAVIdempotent(t *testing.T) {
	pcm := []byte{0x10, 0x00, 0x20, 0x00}
	wav, err := EncodeWAVPCM16LE(pcm, 22050)
	if err != nil {
		t.Fatalf("EncodeWAVPCM16LE() error = %v", err)
	}

	once, err := TranscodeToCanonicalWAV(wav)
	if err != nil {
		t.Fatalf("TranscodeToCanonicalWAV() error = %v", err)
	}
	twice, err := TranscodeToCanonicalWAV(once)
	if err != nil {
		t.Fatalf("TranscodeToCanonicalWAV() second pass error = %v", err)
	}
	if !bytes.Equal(once, twice) {
		t.Fatalf("transcode should be stable across passes")
	}
}

func buildWAV(t *testing.T, raw []byte, channels, sampleRate int) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(raw)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(raw)))
	buf.Write(raw)
	return buf.Bytes()
}
