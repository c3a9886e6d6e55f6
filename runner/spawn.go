package runner

import (
	"errors"
	"os/exec"
	"syscall"

	"github.com/rs/zerolog"
)

// SpawnSpec describes a detached child process.
type SpawnSpec struct {
	Argv []string
}

// Spawner starts processes without waiting for them.
type Spawner interface {
	Spawn(spec SpawnSpec) error
}

// OSSpawner starts each child in its own session with stdio on the null
// device, so it survives the application exiting.
type OSSpawner struct {
	Log zerolog.Logger
}

func (s OSSpawner) Spawn(spec SpawnSpec) error {
	if len(spec.Argv) == 0 {
		return errors.New("spawn: empty argv")
	}
	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return err
	}
	pid := cmd.Process.Pid
	go func() {
		err := cmd.Wait()
		s.Log.Debug().Int("pid", pid).AnErr("exit", err).Msg("detached process exited")
	}()
	return nil
}
