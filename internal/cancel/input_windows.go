//go:build windows

package cancel

import "golang.org/x/sys/windows"

// ConsoleInputPeeker implements InputPeeker against the shell's own console
// input buffer using PeekConsoleInput, which reports events without
// consuming them — the real counterpart to spec.md §4.4's "peeked, not
// consumed" console-input handle.
type ConsoleInputPeeker struct {
	handle windows.Handle
}

// NewConsoleInputPeeker wraps the process's console input handle.
func NewConsoleInputPeeker() (*ConsoleInputPeeker, error) {
	h, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	if err != nil {
		return nil, err
	}
	return &ConsoleInputPeeker{handle: h}, nil
}

const (
	keyEvent        = 0x0001
	focusEvent      = 0x0010
	vkControlB      = 0x42 // 'B'
	leftCtrlPressed = 0x0008
)

// inputRecord mirrors the portion of Windows' INPUT_RECORD this peeker
// reads: an event type plus the two event bodies it inspects.
type inputRecord struct {
	EventType uint16
	_         uint16
	KeyDown   uint32 // non-zero for a key-down KEY_EVENT_RECORD
	VirtKey   uint16
	CtrlState uint32
	SetFocus  uint32 // non-zero for FOCUS_EVENT_RECORD
}

func (p *ConsoleInputPeeker) peek() ([]inputRecord, error) {
	var n uint32
	buf := make([]inputRecord, 16)
	if err := peekConsoleInput(p.handle, buf, &n); err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// PeekCtrlB reports a buffered Ctrl-B key-down event — the shell's
// "send to background" gesture.
func (p *ConsoleInputPeeker) PeekCtrlB() bool {
	records, err := p.peek()
	if err != nil {
		return false
	}
	for _, r := range records {
		if r.EventType == keyEvent && r.KeyDown != 0 && r.VirtKey == vkControlB && r.CtrlState&leftCtrlPressed != 0 {
			return true
		}
	}
	return false
}

// PeekLoseFocus reports a buffered lose-focus event.
func (p *ConsoleInputPeeker) PeekLoseFocus() bool {
	records, err := p.peek()
	if err != nil {
		return false
	}
	for _, r := range records {
		if r.EventType == focusEvent && r.SetFocus == 0 {
			return true
		}
	}
	return false
}
