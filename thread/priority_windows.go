//go:build windows

package thread

import "golang.org/x/sys/windows"

// Win32 thread priority levels (winbase.h); not re-exported by x/sys/windows.
const (
	threadPriorityNormal      = 0
	threadPriorityAboveNormal = 1
	threadPriorityHighest     = 2
)

// applyPriority applies a best-effort Windows thread priority class to the
// calling OS thread. Like the original, failure here is not fatal to Start;
// the caller continues running at whatever priority it already had.
func applyPriority(p Priority) error {
	var winPrio int
	switch p {
	case PriorityAboveNormal:
		winPrio = threadPriorityAboveNormal
	case PriorityHighest:
		winPrio = threadPriorityHighest
	default:
		winPrio = threadPriorityNormal
	}
	h := windows.CurrentThread()
	return windows.SetThreadPriority(h, winPrio)
}
