package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sd "github.com/coreos/go-systemd/v22/dbus"
	"github.com/rs/zerolog"
)

// Systemd arms jobs as systemd user timers.
//
// Each registered job owns two unit definition artifacts in the jobs
// directory, <prefix>-<id>.service and <prefix>-<id>.timer. Register
// links them into the user manager's search path and starts the timer;
// the store entry for the job is only written by the caller after
// Register succeeds, so a store entry always implies an expected
// registration.
type Systemd struct {
	prefix  string
	jobsDir string
	logPath string
	exe     string
	log     zerolog.Logger

	conn *sd.Conn
}

// Options configures the systemd registry.
type Options struct {
	Prefix  string // unit name prefix, e.g. "pingme"
	JobsDir string // directory holding unit definition artifacts
	LogPath string // where fired units append stdout/stderr; empty disables
	Exe     string // executable invoked on fire; defaults to os.Executable()
}

func NewSystemd(opts Options, log zerolog.Logger) (*Systemd, error) {
	exe := opts.Exe
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
	}
	if opts.Prefix == "" || opts.JobsDir == "" {
		return nil, errors.New("registry: prefix and jobs dir are required")
	}
	return &Systemd{
		prefix:  opts.Prefix,
		jobsDir: opts.JobsDir,
		logPath: opts.LogPath,
		exe:     exe,
		log:     log,
	}, nil
}

// connect memoizes the user-session D-Bus connection. Invocations are
// single-threaded, so no locking.
func (s *Systemd) connect(ctx context.Context) (*sd.Conn, error) {
	if s.conn != nil {
		return s.conn, nil
	}
	conn, err := sd.NewUserConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect user systemd: %w", err)
	}
	s.conn = conn
	return conn, nil
}

func (s *Systemd) Close() error {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return nil
}

func (s *Systemd) unitNames(jobID string) (service, timer string) {
	base := UnitBase(s.prefix, jobID)
	return base + ".service", base + ".timer"
}

func (s *Systemd) artifactPaths(jobID string) (service, timer string) {
	sn, tn := s.unitNames(jobID)
	return filepath.Join(s.jobsDir, sn), filepath.Join(s.jobsDir, tn)
}

func (s *Systemd) Register(ctx context.Context, jobID string, plan Plan) error {
	if plan.OneShot == nil && plan.Recurring == nil {
		return errors.New("registry: empty plan")
	}

	servicePath, timerPath := s.artifactPaths(jobID)
	if err := os.MkdirAll(s.jobsDir, 0o755); err != nil {
		return fmt.Errorf("create jobs dir: %w", err)
	}
	if err := os.WriteFile(servicePath, []byte(serviceUnit(s.exe, jobID, s.logPath)), 0o644); err != nil {
		return fmt.Errorf("write service unit: %w", err)
	}
	if err := os.WriteFile(timerPath, []byte(timerUnit(jobID, plan)), 0o644); err != nil {
		s.removeArtifacts(jobID)
		return fmt.Errorf("write timer unit: %w", err)
	}

	conn, err := s.connect(ctx)
	if err != nil {
		s.removeArtifacts(jobID)
		return err
	}

	if _, err := conn.LinkUnitFilesContext(ctx, []string{servicePath, timerPath}, false, true); err != nil {
		s.removeArtifacts(jobID)
		return fmt.Errorf("link units: %w", err)
	}
	if err := conn.ReloadContext(ctx); err != nil {
		s.rollback(ctx, conn, jobID)
		return fmt.Errorf("daemon reload: %w", err)
	}

	_, timerName := s.unitNames(jobID)
	done := make(chan string, 1)
	if _, err := conn.StartUnitContext(ctx, timerName, "replace", done); err != nil {
		s.rollback(ctx, conn, jobID)
		return fmt.Errorf("start %s: %w", timerName, err)
	}
	select {
	case res := <-done:
		if res != "done" {
			s.rollback(ctx, conn, jobID)
			return fmt.Errorf("start %s: job result %q", timerName, res)
		}
	case <-ctx.Done():
		s.rollback(ctx, conn, jobID)
		return ctx.Err()
	}

	s.log.Debug().Str("unit", timerName).Msg("timer armed")
	return nil
}

// Deregister stops and unlinks the job's units and deletes its
// artifacts. Every step is best-effort: a unit that systemd no longer
// knows is not an error from the caller's perspective.
func (s *Systemd) Deregister(ctx context.Context, jobID string) error {
	conn, err := s.connect(ctx)
	if err != nil {
		s.removeArtifacts(jobID)
		return err
	}

	serviceName, timerName := s.unitNames(jobID)
	for _, unit := range []string{timerName, serviceName} {
		done := make(chan string, 1)
		if _, err := conn.StopUnitContext(ctx, unit, "replace", done); err != nil {
			s.log.Debug().Err(err).Str("unit", unit).Msg("stop skipped")
			continue
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if _, err := conn.DisableUnitFilesContext(ctx, []string{timerName, serviceName}, false); err != nil {
		s.log.Debug().Err(err).Str("unit", timerName).Msg("unlink skipped")
	}
	if err := conn.ResetFailedUnitContext(ctx, serviceName); err != nil {
		s.log.Debug().Err(err).Str("unit", serviceName).Msg("reset-failed skipped")
	}
	if err := conn.ReloadContext(ctx); err != nil {
		s.log.Debug().Err(err).Msg("daemon reload skipped")
	}
	s.removeArtifacts(jobID)
	return nil
}

func (s *Systemd) IsActive(ctx context.Context, jobID string) (bool, error) {
	conn, err := s.connect(ctx)
	if err != nil {
		return false, err
	}
	_, timerName := s.unitNames(jobID)
	units, err := conn.ListUnitsByNamesContext(ctx, []string{timerName})
	if err != nil {
		return false, fmt.Errorf("query %s: %w", timerName, err)
	}
	for _, u := range units {
		if u.Name != timerName {
			continue
		}
		return u.LoadState == "loaded" && (u.ActiveState == "active" || u.ActiveState == "activating"), nil
	}
	return false, nil
}

// rollback undoes a partial registration so no orphaned unit lingers.
func (s *Systemd) rollback(ctx context.Context, conn *sd.Conn, jobID string) {
	serviceName, timerName := s.unitNames(jobID)
	if _, err := conn.StopUnitContext(ctx, timerName, "replace", nil); err != nil {
		s.log.Debug().Err(err).Str("unit", timerName).Msg("rollback stop skipped")
	}
	if _, err := conn.DisableUnitFilesContext(ctx, []string{timerName, serviceName}, false); err != nil {
		s.log.Debug().Err(err).Str("unit", timerName).Msg("rollback unlink skipped")
	}
	if err := conn.ReloadContext(ctx); err != nil {
		s.log.Debug().Err(err).Msg("rollback reload skipped")
	}
	s.removeArtifacts(jobID)
}

func (s *Systemd) removeArtifacts(jobID string) {
	servicePath, timerPath := s.artifactPaths(jobID)
	for _, p := range []string{servicePath, timerPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Debug().Err(err).Str("path", p).Msg("artifact remove skipped")
		}
	}
}
