package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"medscribe/internal/domain"
	"medscribe/internal/ports"
)

// FFMPEGCapture records microphone PCM audio using an ffmpeg subprocess.
// Echo cancellation and noise suppression are applied via audio filters.
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
	}
	if filter := captureFilter(cfg); filter != "" {
		args = append(args, "-af", filter)
	}
	args = append(args,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	)

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create recorder stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, classifyStartError(err, stderr.String())
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		if err == nil {
			err = errors.New("recorder exited before capture started")
		}
		return nil, classifyStartError(err, stderr.String())
	case <-time.After(250 * time.Millisecond):
	}

	return &ffmpegSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

// captureFilter builds the ffmpeg filter chain for echo cancellation and
// noise suppression. afftdn is ffmpeg's FFT denoiser; the high-pass trim
// stands in for echo cancellation on inputs without a hardware AEC.
func captureFilter(cfg ports.AudioConfig) string {
	var filters []string
	if cfg.NoiseSuppression {
		filters = append(filters, "afftdn=nf=-25")
	}
	if cfg.EchoCancellation {
		filters = append(filters, "highpass=f=80")
	}
	return strings.Join(filters, ",")
}

// classifyStartError maps a recorder startup failure onto the capture
// error taxonomy so the state machine can surface a readable cause.
func classifyStartError(err error, stderr string) error {
	detail := strings.TrimSpace(stderr)
	if detail == "" {
		detail = err.Error()
	}

	lowered := strings.ToLower(detail + " " + err.Error())
	cause := domain.CaptureCauseOther
	switch {
	case strings.Contains(lowered, "permission denied") ||
		strings.Contains(lowered, "access denied") ||
		strings.Contains(lowered, "not authorized"):
		cause = domain.CaptureCausePermission
	case strings.Contains(lowered, "no such device") ||
		strings.Contains(lowered, "no such file") ||
		strings.Contains(lowered, "device not found") ||
		strings.Contains(lowered, "executable file not found"):
		cause = domain.CaptureCauseNoDevice
	}

	return &domain.CaptureError{Cause: cause, Detail: detail}
}

type ffmpegSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *ffmpegSession) Close() error {
	return s.Stop()
}

func (s *ffmpegSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.stopErr == nil {
				s.stopErr = closeErr
			}
		}

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, strings.TrimSpace(s.stderr.String()))
		}
	})

	return s.stopErr
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
