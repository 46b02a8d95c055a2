package session

import (
	"github.com/abhisek/bandup/internal/tutor"
)

// turnMsg is sent when a model round trip finishes, successfully or not.
type turnMsg struct {
	Update *tutor.TurnUpdate
	Err    error
}

// visualAidSavedMsg is sent after a Task 1 figure is written to disk.
type visualAidSavedMsg struct {
	Path string
	Err  error
}

// recordingStoppedMsg carries the captured clip from the recorder.
type recordingStoppedMsg struct {
	Clip []byte
	MIME string
	Err  error
}
