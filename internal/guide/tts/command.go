package tts

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"
)

// commandEngine narrates by running one OS speech program per utterance.
type commandEngine struct {
	voiceHub

	name    string
	command func(u Utterance) (*exec.Cmd, error)

	mutex   sync.Mutex
	current *commandRun
	closed  bool
}

type commandRun struct {
	cmd       *exec.Cmd
	cancelled bool
}

func (e *commandEngine) Speak(u Utterance, cb Callbacks) error {
	cmd, err := e.command(u)
	if err != nil {
		return err
	}

	e.mutex.Lock()
	if e.closed {
		e.mutex.Unlock()
		return fmt.Errorf("%s: engine closed", e.name)
	}
	e.stopLocked()

	if err := cmd.Start(); err != nil {
		e.mutex.Unlock()
		return fmt.Errorf("%s: failed to start: %w", e.name, err)
	}
	run := &commandRun{cmd: cmd}
	e.current = run
	e.mutex.Unlock()

	go func() {
		cb.start()
		err := cmd.Wait()

		e.mutex.Lock()
		cancelled := run.cancelled
		if e.current == run {
			e.current = nil
		}
		e.mutex.Unlock()

		switch {
		case cancelled:
			cb.fail(ErrCancelled)
		case err != nil:
			cb.fail(fmt.Errorf("%s: %w", e.name, err))
		default:
			cb.end()
		}
	}()

	return nil
}

func (e *commandEngine) Cancel() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.stopLocked()
}

func (e *commandEngine) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.closed = true
	return e.stopLocked()
}

func (e *commandEngine) stopLocked() error {
	run := e.current
	if run == nil {
		return nil
	}
	e.current = nil
	run.cancelled = true

	if run.cmd.Process == nil {
		return nil
	}
	if err := terminate(run.cmd.Process); err != nil {
		logrus.WithError(err).WithField("engine", e.name).Debug("failed to stop speech process")
		return err
	}
	return nil
}
