package sys

// Upcall is a kernel-initiated callback delivered to userspace.
//
// Upcalls are invoked on the calling goroutine from inside YieldWait, never
// preemptively, so implementations need no synchronization.
type Upcall func(arg0, arg1 uint32)

// ErrorCode is a syscall transport error.
//
// Codes are passed through from the kernel unchanged; userspace layers wrap
// but never translate them.
type ErrorCode uint32

const (
	ErrFail ErrorCode = iota + 1
	ErrBusy
	ErrAlready
	ErrOff
	ErrReserve
	ErrInvalid
	ErrSize
	ErrCancel
	ErrNoMem
	ErrNoSupport
	ErrNoDevice
	ErrUninstalled
	ErrNoAck
)

// ErrBadRVal indicates a malformed return value from the kernel.
const ErrBadRVal ErrorCode = 1024

func (e ErrorCode) Error() string {
	switch e {
	case ErrFail:
		return "fail"
	case ErrBusy:
		return "busy"
	case ErrAlready:
		return "already"
	case ErrOff:
		return "off"
	case ErrReserve:
		return "reserve"
	case ErrInvalid:
		return "invalid"
	case ErrSize:
		return "size"
	case ErrCancel:
		return "cancel"
	case ErrNoMem:
		return "no memory"
	case ErrNoSupport:
		return "not supported"
	case ErrNoDevice:
		return "no device"
	case ErrUninstalled:
		return "uninstalled"
	case ErrNoAck:
		return "no ack"
	case ErrBadRVal:
		return "bad return value"
	default:
		return "unknown"
	}
}

// CommandResult is the outcome of a command syscall: either a 32-bit success
// value or an error code.
type CommandResult struct {
	value uint32
	code  ErrorCode
}

// Success returns a CommandResult carrying a success value.
func Success(v uint32) CommandResult {
	return CommandResult{value: v}
}

// Failure returns a CommandResult carrying an error code.
//
// A zero code is coerced to ErrFail so the result still reads as a failure.
func Failure(code ErrorCode) CommandResult {
	if code == 0 {
		code = ErrFail
	}
	return CommandResult{code: code}
}

// Err returns nil on success, or the error code.
func (r CommandResult) Err() error {
	if r.code != 0 {
		return r.code
	}
	return nil
}

// Value returns the success value, or the error code.
func (r CommandResult) Value() (uint32, error) {
	if r.code != 0 {
		return 0, r.code
	}
	return r.value, nil
}

// Syscalls is the transport between a userspace task and the kernel.
//
// It is the fixed ABI surface driver clients are written against; the
// simulated kernel and test fakes both implement it.
type Syscalls interface {
	// Command invokes command cmd on the driver with two argument words.
	Command(driver, cmd, arg1, arg2 uint32) CommandResult

	// Subscribe installs up on the driver's subscription slot, replacing
	// any current entry. A nil up removes the current subscription.
	Subscribe(driver, slot uint32, up Upcall) error

	// YieldWait suspends the task until the kernel has at least one pending
	// upcall, and delivers it before returning.
	YieldWait()
}

// WithSubscription runs body with up installed on the driver's subscription
// slot, and removes the subscription on every exit path, including panics.
//
// The kernel holds a reference to state captured by up only while body runs;
// callers may therefore point upcalls at locals of the enclosing frame.
func WithSubscription(s Syscalls, driver, slot uint32, up Upcall, body func() error) error {
	if err := s.Subscribe(driver, slot, up); err != nil {
		return err
	}
	defer func() {
		_ = s.Subscribe(driver, slot, nil)
	}()
	return body()
}
