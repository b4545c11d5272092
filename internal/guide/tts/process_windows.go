//go:build windows

package tts

import (
	"errors"
	"os"
)

// terminate kills the speech process; Windows has no SIGTERM equivalent for
// console programs started this way.
func terminate(p *os.Process) error {
	err := p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
