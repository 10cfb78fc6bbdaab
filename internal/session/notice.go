package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAssistant is wrapped in a Notice when no AI backend is configured.
	ErrNoAssistant = errors.New("AI assistant is not configured")

	// ErrEmptyInstruction is returned by Refine for a blank instruction.
	ErrEmptyInstruction = errors.New("instruction is empty")
)

// Notice is a collaborator failure worth telling the author about. The
// manuscript is left exactly as it was before the operation.
type Notice struct {
	Op      string
	Message string
	Err     error
}

func (n *Notice) Error() string {
	if n.Err == nil {
		return n.Message
	}
	return fmt.Sprintf("%s: %v", n.Message, n.Err)
}

func (n *Notice) Unwrap() error {
	return n.Err
}

// AsNotice reports whether err carries a Notice and returns it.
func AsNotice(err error) (*Notice, bool) {
	var n *Notice
	if errors.As(err, &n) {
		return n, true
	}
	return nil, false
}
