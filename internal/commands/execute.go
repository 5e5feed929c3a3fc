package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Time     func(TimeArgs) (Result, error)
	Days     func(DaysArgs) (Result, error)
	EveryDay func(EveryDayArgs) (Result, error)
	Enable   func() (Result, error)
	Disable  func() (Result, error)
	Save     func() (Result, error)
	Reset    func() (Result, error)
	Show     func(ShowArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeTime:
		if handlers.Time == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Time(*cmd.Time)
	case TypeDays:
		if handlers.Days == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Days(*cmd.Days)
	case TypeEveryDay:
		if handlers.EveryDay == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.EveryDay(*cmd.EveryDay)
	case TypeEnable:
		return call(cmd.Type, handlers.Enable)
	case TypeDisable:
		return call(cmd.Type, handlers.Disable)
	case TypeSave:
		return call(cmd.Type, handlers.Save)
	case TypeReset:
		return call(cmd.Type, handlers.Reset)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func call(t Type, fn func() (Result, error)) (Result, error) {
	if fn == nil {
		return Result{}, missing(t)
	}
	return fn()
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
