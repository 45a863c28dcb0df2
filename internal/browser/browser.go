// Package browser hands URLs to the operating system's default handler.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener opens a URL somewhere the user can see it.
type Opener interface {
	Open(url string) error
}

// System launches the platform's URL handler and does not wait for it.
type System struct{}

func (System) Open(url string) error {
	name, args, err := Command(runtime.GOOS, url)
	if err != nil {
		return err
	}

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("browser: couldn't launch %s: %w", name, err)
	}
	// nobody waits for the browser, but the child still has to be reaped.
	go cmd.Wait() //nolint:errcheck

	return nil
}

// Command is the command line that opens url on goos.
func Command(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		// `cmd /c start` would mangle the & in query strings.
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("browser: opening URLs isn't supported on %s", goos)
	}
}

// Func adapts a plain function to Opener.
type Func func(url string) error

func (f Func) Open(url string) error {
	return f(url)
}
