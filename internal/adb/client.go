// Package adb wraps the Android Debug Bridge executable. It shells out to
// adb for every operation; the wire protocol itself is out of scope.
package adb

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Melal1/adb-tui/internal/logging"
)

// runner abstracts adb process execution so parsing and error
// classification are testable without a device attached.
type runner interface {
	// run executes adb with the given arguments and returns captured output.
	run(ctx context.Context, args ...string) (stdout, stderr string, err error)

	// stream executes adb and delivers stdout line by line as it arrives.
	// Carriage returns are treated as line terminators so progress
	// readouts surface incrementally.
	stream(ctx context.Context, onLine func(string), args ...string) (stderr string, err error)
}

// execRunner is the real runner backed by os/exec.
type execRunner struct {
	bin string
}

func (r *execRunner) run(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (r *execRunner) stream(ctx context.Context, onLine func(string), args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	if err := cmd.Start(); err != nil {
		return "", err
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Split(scanCRLines)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			onLine(line)
		}
	}

	return stderr.String(), cmd.Wait()
}

// scanCRLines is a bufio.SplitFunc that terminates tokens on \n or \r,
// so adb's carriage-return progress updates arrive as separate lines.
func scanCRLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Client issues adb commands against a single device.
type Client struct {
	serial string
	log    *logging.Logger
	r      runner
}

// NewClient creates a client for the adb binary at bin. serial may be
// empty when a single device is attached.
func NewClient(bin, serial string, log *logging.Logger) *Client {
	if log == nil {
		log = logging.NewDefaultCLILogger()
	}
	return &Client{
		serial: serial,
		log:    log,
		r:      &execRunner{bin: bin},
	}
}

// args prepends the -s flag when a serial is configured.
func (c *Client) args(rest ...string) []string {
	if c.serial == "" {
		return rest
	}
	return append([]string{"-s", c.serial}, rest...)
}

// shellQuote single-quotes a remote path for the device shell. Remote
// names regularly contain spaces and parentheses (camera output).
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Devices lists devices known to the adb server.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	stdout, stderr, err := c.r.run(ctx, "devices", "-l")
	if err != nil {
		if cls := classifyShellError(stderr); cls != nil {
			return nil, cls
		}
		return nil, fmt.Errorf("adb devices: %w", err)
	}
	return parseDevices(stdout), nil
}

// parseDevices parses `adb devices -l` output.
func parseDevices(out string) []Device {
	var devices []Device

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		d := Device{Serial: fields[0], State: fields[1]}
		for _, f := range fields[2:] {
			if v, ok := strings.CutPrefix(f, "model:"); ok {
				d.Model = strings.ReplaceAll(v, "_", " ")
			}
		}
		devices = append(devices, d)
	}
	return devices
}
