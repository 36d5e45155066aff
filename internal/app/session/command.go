package session

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownCommand is returned for input that is not a timer command.
var ErrUnknownCommand = errors.New("unknown command")

// CommandKind identifies an interactive command.
type CommandKind int

const (
	CommandToggle CommandKind = iota
	CommandStart
	CommandPause
	CommandReset
	CommandSelect
	CommandQuit
	CommandHelp
)

// String returns the string representation of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CommandToggle:
		return "toggle"
	case CommandStart:
		return "start"
	case CommandPause:
		return "pause"
	case CommandReset:
		return "reset"
	case CommandSelect:
		return "select"
	case CommandQuit:
		return "quit"
	case CommandHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Command is a parsed interactive command.
type Command struct {
	Kind  CommandKind
	Phase int // Set for CommandSelect
}

// HelpText lists the interactive commands.
const HelpText = `Commands:
  <enter>, t, toggle   pause or resume
  s, start             start or resume
  p, pause             pause
  r, reset             back to the first phase
  <n>, select <n>      jump to phase n (manual mode)
  q, quit              exit
  h, help              show this help`

// ParseCommand parses one line of user input. An empty line toggles.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{Kind: CommandToggle}, nil
	}

	name, args := fields[0], fields[1:]
	if index, err := strconv.Atoi(name); err == nil && len(args) == 0 {
		return Command{Kind: CommandSelect, Phase: index}, nil
	}

	var kind CommandKind
	switch name {
	case "t", "toggle":
		kind = CommandToggle
	case "s", "start":
		kind = CommandStart
	case "p", "pause":
		kind = CommandPause
	case "r", "reset":
		kind = CommandReset
	case "q", "quit", "exit":
		kind = CommandQuit
	case "h", "help", "?":
		kind = CommandHelp
	case "select":
		if len(args) != 1 {
			return Command{}, errors.Wrap(ErrUnknownCommand, "select needs a phase number")
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, errors.Wrapf(ErrUnknownCommand, "select %q", args[0])
		}
		return Command{Kind: CommandSelect, Phase: index}, nil
	default:
		return Command{}, errors.Wrapf(ErrUnknownCommand, "%q", line)
	}

	if len(args) > 0 {
		return Command{}, errors.Wrapf(ErrUnknownCommand, "%s takes no arguments", name)
	}
	return Command{Kind: kind}, nil
}
