// Package dial hands tel: URIs to the host platform's call handler.
package dial

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Scheme is the URI scheme for dial intents.
const Scheme = "tel:"

// ErrNoOpener is returned when no opener command is known for the platform.
var ErrNoOpener = errors.New("dial: no opener for platform")

// URI returns the dial intent URI for a phone string. The phone is not normalized.
func URI(phone string) string {
	return Scheme + phone
}

// Dialer hands a dial intent to something that can place the call.
type Dialer interface {
	Dial(ctx context.Context, uri string) error
}

// PlatformDialer launches the host's URI opener with the dial intent.
// Only the launch is observed; the call itself is not tracked.
type PlatformDialer struct {
	command []string
}

// NewPlatformDialer returns a PlatformDialer. A non-empty command overrides the
// platform default; it is split on whitespace and the URI is appended as the last argument.
func NewPlatformDialer(command string) *PlatformDialer {
	return &PlatformDialer{command: strings.Fields(command)}
}

// Dial runs the opener and waits for it to exit.
func (d *PlatformDialer) Dial(ctx context.Context, uri string) error {
	argv := d.command
	if len(argv) == 0 {
		argv = defaultOpener(runtime.GOOS)
	}
	if len(argv) == 0 {
		return fmt.Errorf("%w: %s", ErrNoOpener, runtime.GOOS)
	}

	args := append(append([]string(nil), argv[1:]...), uri)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("dial: %s %s: %w: %s", argv[0], uri, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// defaultOpener returns the URI opener command for goos.
func defaultOpener(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open"}
	default:
		return nil
	}
}
