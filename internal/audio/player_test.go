package audio

import (
	"encoding/binary"
	"testing"
)

func TestWavFromPCMAddsHeader(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := wavFromPCM(pcm)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != pcmSampleRate {
		t.Fatalf("sample rate = %d, want %d", rate, pcmSampleRate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); size != uint32(len(pcm)) {
		t.Fatalf("data size = %d, want %d", size, len(pcm))
	}
}

func TestWavFromPCMPassesThroughWav(t *testing.T) {
	clip := append([]byte("RIFF"), make([]byte, 40)...)
	if got := wavFromPCM(clip); len(got) != len(clip) {
		t.Fatal("wav clip was re-wrapped")
	}
}

func TestRecorderStopWithoutStart(t *testing.T) {
	r := NewMicRecorder()
	if _, _, err := r.Stop(); err != ErrNotRecording {
		t.Fatalf("got %v, want ErrNotRecording", err)
	}
	if r.Recording() {
		t.Fatal("idle recorder reports recording")
	}
}
