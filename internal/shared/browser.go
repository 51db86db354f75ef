package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the launcher argv for goos, or nil when the platform has none.
func browserCommand(goos, url string) []string {
	switch goos {
	case "darwin":
		return []string{"open", url}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", url}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open", url}
	default:
		return nil
	}
}

// OpenBrowser starts the desktop's default browser on url and returns without waiting for it.
//
// Used for the OAuth consent page and for opening course item content.
func OpenBrowser(url string) error {
	argv := browserCommand(runtime.GOOS, url)
	if argv == nil {
		return fmt.Errorf("%w: no browser launcher for %s", ErrServiceUnavailable, runtime.GOOS)
	}

	if err := exec.Command(argv[0], argv[1:]...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
