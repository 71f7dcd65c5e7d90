package errors

type ExitCode int

const (
	ExitSuccess      ExitCode = 0
	ExitGeneralError ExitCode = 1
	ExitConfigError  ExitCode = 2
	ExitSuiteFailed  ExitCode = 3
	ExitPageNotReady ExitCode = 4
	ExitDriverError  ExitCode = 5
	ExitIOError      ExitCode = 6
)

func (e ExitCode) Int() int {
	return int(e)
}
