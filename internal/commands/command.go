package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/visionary/internal/model"
)

type Type string

const (
	TypeTime     Type = "time"
	TypeDays     Type = "days"
	TypeEveryDay Type = "everyday"
	TypeEnable   Type = "enable"
	TypeDisable  Type = "disable"
	TypeSave     Type = "save"
	TypeReset    Type = "reset"
	TypeShow     Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type TimeArgs struct {
	Hour   int
	Minute int
}

type DaysArgs struct {
	Days []time.Weekday
}

type EveryDayArgs struct {
	On bool
}

type ShowArgs struct {
	Subject string
}

type Command struct {
	Type     Type
	Raw      string
	Time     *TimeArgs
	Days     *DaysArgs
	EveryDay *EveryDayArgs
	Show     *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeTime:
		return parseTime(input, args)
	case TypeDays:
		return parseDays(input, args)
	case TypeEveryDay:
		return parseEveryDay(input, args)
	case TypeEnable, TypeDisable, TypeSave, TypeReset:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseTime(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "time requires HH:MM"}
	}
	hour, minute, err := ParseClock(strings.Join(args, ""))
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeTime, Raw: raw, Time: &TimeArgs{Hour: hour, Minute: minute}}, nil
}

// ParseClock accepts 24-hour "22:30" and 12-hour "10:30pm" or "10pm" forms.
func ParseClock(raw string) (int, int, error) {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSuffix(s, suffix)
		}
	}
	hourPart, minutePart, hasMinute := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q", raw)
	}
	minute := 0
	if hasMinute {
		if len(minutePart) != 2 {
			return 0, 0, fmt.Errorf("invalid minutes in %q", raw)
		}
		if minute, err = strconv.Atoi(minutePart); err != nil {
			return 0, 0, fmt.Errorf("invalid minutes in %q", raw)
		}
	} else if meridiem == "" {
		return 0, 0, fmt.Errorf("invalid time %q", raw)
	}
	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("hour out of range in %q", raw)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %q", raw)
	}
	return hour, minute, nil
}

func parseDays(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "days requires a list like mon,wed,fri or none"}
	}
	joined := strings.Join(args, ",")
	if strings.EqualFold(strings.TrimSpace(joined), "none") {
		return Command{Type: TypeDays, Raw: raw, Days: &DaysArgs{Days: []time.Weekday{}}}, nil
	}
	seen := make(map[time.Weekday]bool)
	days := make([]time.Weekday, 0, 7)
	for _, part := range strings.Split(joined, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := model.ParseWeekday(part)
		if err != nil {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown day: %s", strings.TrimSpace(part))}
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "days requires at least one day"}
	}
	return Command{Type: TypeDays, Raw: raw, Days: &DaysArgs{Days: days}}, nil
}

func parseEveryDay(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "everyday requires on or off"}
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		return Command{Type: TypeEveryDay, Raw: raw, EveryDay: &EveryDayArgs{On: true}}, nil
	case "off", "false", "no":
		return Command{Type: TypeEveryDay, Raw: raw, EveryDay: &EveryDayArgs{On: false}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "everyday requires on or off"}
	}
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "sleep", "exercises", "dashboard", "acuity":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown view: %s", subject)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
}
