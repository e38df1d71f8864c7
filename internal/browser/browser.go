package browser

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Open launches the user's default browser at the given URL. Used for the
// identity-provider sign-in handoff and for quotation document downloads,
// both of which must happen in a real browsing context.
func Open(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}

	// Validate URL scheme to prevent command injection
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Errorf("refusing to open non-HTTP URL: %s", url)
	}

	return exec.Command(cmd, args...).Start()
}
