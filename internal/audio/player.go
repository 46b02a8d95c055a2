// Package audio plays synthesized speech and captures spoken answers
// through whichever command-line audio tools the host provides.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// Speech synthesis returns raw 16-bit mono PCM at this rate.
const (
	pcmSampleRate = 24000
	pcmChannels   = 1
	pcmBitDepth   = 16
)

// ErrNoPlayer means no usable playback tool was found on PATH.
var ErrNoPlayer = errors.New("no audio player found (tried afplay, aplay, ffplay)")

// playerCommands, in preference order. Each takes a wav path as its final
// argument.
var playerCommands = [][]string{
	{"afplay"},
	{"aplay", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

// Player plays one clip at a time. Starting a new clip stops the previous
// one first, so tutor turns never overlap.
type Player struct {
	mu      sync.Mutex
	current *exec.Cmd
	tmp     string
}

// NewPlayer returns an idle player.
func NewPlayer() *Player {
	return &Player{}
}

// Play starts the clip asynchronously, stopping whatever was playing. The
// clip is raw PCM from speech synthesis; it is wrapped in a wav header and
// handed to the system player.
func (p *Player) Play(pcm []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	f, err := os.CreateTemp("", "bandup-*.wav")
	if err != nil {
		return fmt.Errorf("staging audio clip: %w", err)
	}
	if _, err := f.Write(wavFromPCM(pcm)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("staging audio clip: %w", err)
	}
	f.Close()

	cmd, err := playerCommand(f.Name())
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := cmd.Start(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("starting audio player: %w", err)
	}

	p.current = cmd
	p.tmp = f.Name()
	go func() {
		cmd.Wait()
		os.Remove(f.Name())
	}()
	return nil
}

// Stop kills any in-flight playback. Safe to call when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current != nil && p.current.Process != nil {
		p.current.Process.Kill()
	}
	p.current = nil
	p.tmp = ""
}

func playerCommand(path string) (*exec.Cmd, error) {
	for _, candidate := range playerCommands {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			args := append(candidate[1:], path)
			return exec.Command(candidate[0], args...), nil
		}
	}
	return nil, ErrNoPlayer
}

// wavFromPCM prefixes raw PCM with a RIFF header so system players accept
// it. Clips that already carry a RIFF header pass through untouched.
func wavFromPCM(pcm []byte) []byte {
	if len(pcm) >= 4 && string(pcm[:4]) == "RIFF" {
		return pcm
	}

	byteRate := pcmSampleRate * pcmChannels * pcmBitDepth / 8
	blockAlign := pcmChannels * pcmBitDepth / 8

	header := make([]byte, 44)
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+len(pcm)))
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16)
	binary.LittleEndian.PutUint16(header[20:], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:], pcmChannels)
	binary.LittleEndian.PutUint32(header[24:], pcmSampleRate)
	binary.LittleEndian.PutUint32(header[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:], pcmBitDepth)
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(len(pcm)))

	return append(header, pcm...)
}
