// Package view holds the typed view-models console templates render.
// Constructors validate their input so templates never see an impossible
// state.
package view

// State is the rendering state of one view or control
type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateSuccess:
		return "success"
	}
	return "unknown"
}

func (s State) IsError() bool   { return s == StateError }
func (s State) IsSuccess() bool { return s == StateSuccess }

// Status pairs a State with the message shown for it
type Status struct {
	State   State
	Message string
}

func Failed(msg string) Status    { return Status{State: StateError, Message: msg} }
func Succeeded(msg string) Status { return Status{State: StateSuccess, Message: msg} }

// FlashKind is how a one-shot banner is styled
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a banner carried across a redirect. DismissMs > 0 asks the page to
// hide it after that many milliseconds.
type Flash struct {
	Kind      FlashKind
	Message   string
	DismissMs int
}

// Greeting returns the header greeting for the logged in admin
func Greeting(email string) string {
	if email == "" {
		return "Welcome, Admin"
	}
	return "Welcome, " + email
}
