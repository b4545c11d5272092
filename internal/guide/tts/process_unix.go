//go:build unix

package tts

import (
	"errors"
	"os"
	"syscall"
)

// terminate asks the speech process to exit so it can release the audio device.
func terminate(p *os.Process) error {
	err := p.Signal(syscall.SIGTERM)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
