package audio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Recorder captures one spoken answer at a time. Start spawns a capture
// process; Stop ends it and returns the recorded wav bytes.
type Recorder interface {
	Start() error
	Stop() ([]byte, string, error)
	Recording() bool
}

var (
	// ErrNoRecorder means no usable capture tool was found on PATH.
	ErrNoRecorder = errors.New("no audio recorder found (tried sox, arecord, ffmpeg)")

	// ErrMicrophoneDenied means the capture tool started but could not
	// open the input device.
	ErrMicrophoneDenied = errors.New("microphone access denied")

	// ErrNotRecording means Stop was called with no capture in flight.
	ErrNotRecording = errors.New("not recording")
)

// recorderCommands, in preference order. Each records wav to the path that
// gets appended as the final argument and stops cleanly on SIGINT.
var recorderCommands = [][]string{
	{"rec", "-q", "-c", "1", "-r", "16000"},
	{"arecord", "-q", "-f", "S16_LE", "-c", "1", "-r", "16000"},
	{"ffmpeg", "-loglevel", "quiet", "-f", "pulse", "-i", "default", "-ac", "1", "-ar", "16000"},
}

// MicRecorder is the PATH-probing Recorder used by the speaking screen.
type MicRecorder struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	path string
}

// NewMicRecorder returns an idle recorder.
func NewMicRecorder() *MicRecorder {
	return &MicRecorder{}
}

// Recording reports whether a capture is in flight.
func (r *MicRecorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Start begins capturing. A second Start while recording is an error.
func (r *MicRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return errors.New("already recording")
	}

	f, err := os.CreateTemp("", "bandup-rec-*.wav")
	if err != nil {
		return fmt.Errorf("staging recording: %w", err)
	}
	f.Close()

	cmd, err := recorderCommand(f.Name())
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := cmd.Start(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("starting recorder: %w", err)
	}

	r.cmd = cmd
	r.path = f.Name()
	return nil
}

// Stop ends the capture and returns the wav bytes with their MIME type.
// An empty capture file means the tool never got the input device, which
// maps to ErrMicrophoneDenied.
func (r *MicRecorder) Stop() ([]byte, string, error) {
	r.mu.Lock()
	cmd, path := r.cmd, r.path
	r.cmd = nil
	r.path = ""
	r.mu.Unlock()

	if cmd == nil {
		return nil, "", ErrNotRecording
	}
	defer os.Remove(path)

	if cmd.Process != nil {
		cmd.Process.Signal(syscall.SIGINT)
	}
	waitOrKill(cmd, 2*time.Second)

	clip, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading recording: %w", err)
	}
	if len(clip) == 0 {
		return nil, "", ErrMicrophoneDenied
	}
	return clip, "audio/wav", nil
}

func waitOrKill(cmd *exec.Cmd, grace time.Duration) {
	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		<-done
	}
}

func recorderCommand(path string) (*exec.Cmd, error) {
	for _, candidate := range recorderCommands {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			args := append(candidate[1:], path)
			return exec.Command(candidate[0], args...), nil
		}
	}
	return nil, ErrNoRecorder
}

// Available reports whether any capture tool exists on this host, so the
// speaking screen can hide the record hint instead of failing on use.
func Available() bool {
	for _, candidate := range recorderCommands {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return true
		}
	}
	return false
}
