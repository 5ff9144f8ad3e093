package command

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/session"
)

type commandDef struct {
	kind  Kind
	usage string
}

var commands = map[string]commandDef{
	"back":      {Back, "back"},
	"b":         {Back, "back"},
	"forward":   {Forward, "forward"},
	"f":         {Forward, "forward"},
	"reload":    {Reload, "reload"},
	"r":         {Reload, "reload"},
	"help":      {Help, "help"},
	"h":         {Help, "help"},
	"?":         {Help, "help"},
	"quit":      {Quit, "quit"},
	"q":         {Quit, "quit"},
	"exit":      {Quit, "quit"},
	"go":        {JumpTo, "go HOST[:PORT][/SELECTOR]"},
	"s":         {JumpTo, "s HOST[:PORT]"},
	"server":    {JumpTo, "server HOST[:PORT]"},
	"save":      {Save, "save [PATH]"},
	"info":      {Info, "info"},
	"where":     {Info, "where"},
	"mark":      {Mark, "mark"},
	"bookmarks": {Bookmarks, "bookmarks"},
	"unmark":    {Unmark, "unmark N"},
	"search":    {Search, "search N QUERY"},
}

// names lists the long command names offered as suggestions.
var names = []string{
	"back", "forward", "reload", "help", "quit", "go", "server",
	"save", "info", "where", "mark", "bookmarks", "unmark", "search",
}

// Interpreter turns input lines into Actions. It never touches the Session
// it is given.
type Interpreter struct {
	prefix      string
	defaultPort int
}

func New(prefix string, defaultPort int) *Interpreter {
	if defaultPort <= 0 {
		defaultPort = gopher.DefaultPort
	}
	return &Interpreter{prefix: prefix, defaultPort: defaultPort}
}

// Interpret resolves line against s. Errors are user input errors and never
// imply a state change.
func (in *Interpreter) Interpret(s session.Session, line string) (Action, error) {
	line = strings.TrimSpace(line)
	if in.prefix != "" {
		line = strings.TrimSpace(strings.TrimPrefix(line, in.prefix))
	}
	if line == "" {
		return Action{Kind: NoOp}, nil
	}

	fields := strings.Fields(line)
	if n, ok := parseIndex(fields[0]); ok && len(fields) == 1 {
		if _, err := s.Entry(n); err != nil {
			return Action{}, err
		}
		return Action{Kind: Select, Index: n}, nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]
	cmd, known := commands[name]
	if !known {
		if len(fields) == 1 && looksLikeAddress(fields[0]) {
			return in.jump(fields[0], "go HOST[:PORT][/SELECTOR]")
		}
		return Action{}, &UnknownCommandError{Input: fields[0], Suggestion: suggest(name)}
	}

	switch cmd.kind {
	case Back:
		if len(s.History) == 0 {
			return Action{Kind: NoOp, Message: session.ErrAtRoot.Error()}, nil
		}
		return Action{Kind: Back}, nil
	case Forward:
		if len(s.Forward) == 0 {
			return Action{Kind: NoOp, Message: session.ErrNoForward.Error()}, nil
		}
		return Action{Kind: Forward}, nil
	case Reload, Help, Quit, Info, Bookmarks:
		return Action{Kind: cmd.kind}, nil
	case JumpTo:
		if len(args) != 1 {
			return Action{}, &UsageError{Command: name, Usage: cmd.usage}
		}
		if name == "go" {
			return in.jump(args[0], cmd.usage)
		}
		return in.server(args[0], cmd.usage)
	case Save:
		if !s.Loaded {
			return Action{}, ErrNothingLoaded
		}
		return Action{Kind: Save, Path: strings.Join(args, " ")}, nil
	case Mark:
		if !s.Loaded {
			return Action{}, ErrNothingLoaded
		}
		return Action{Kind: Mark}, nil
	case Unmark:
		if len(args) != 1 {
			return Action{}, &UsageError{Command: name, Usage: cmd.usage}
		}
		n, ok := parseIndex(args[0])
		if !ok {
			return Action{}, &UsageError{Command: name, Usage: cmd.usage}
		}
		return Action{Kind: Unmark, Index: n}, nil
	case Search:
		return searchAction(s, name, cmd.usage, args)
	}
	return Action{}, &UnknownCommandError{Input: fields[0]}
}

func (in *Interpreter) jump(raw, usage string) (Action, error) {
	addr, err := gopher.ParseAddress(raw, in.defaultPort)
	if err != nil {
		return Action{}, &UsageError{Command: "go", Usage: usage, Err: err}
	}
	return Action{Kind: JumpTo, Address: addr}, nil
}

func (in *Interpreter) server(raw, usage string) (Action, error) {
	host, port, err := gopher.ParseHostPort(raw, in.defaultPort)
	if err != nil {
		return Action{}, &UsageError{Command: "server", Usage: usage, Err: err}
	}
	return Action{Kind: JumpTo, Address: gopher.Address{Host: host, Port: port, Type: gopher.Submenu}}, nil
}

func searchAction(s session.Session, name, usage string, args []string) (Action, error) {
	if len(args) < 2 {
		return Action{}, &UsageError{Command: name, Usage: usage}
	}
	n, ok := parseIndex(args[0])
	if !ok {
		return Action{}, &UsageError{Command: name, Usage: usage}
	}
	entry, err := s.Entry(n)
	if err != nil {
		return Action{}, err
	}
	if entry.Type != gopher.Search {
		return Action{}, ErrNotSearch
	}
	return Action{Kind: Search, Index: n, Query: strings.Join(args[1:], " ")}, nil
}

func parseIndex(raw string) (int, bool) {
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		// Too large for any menu; let the range check report it.
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

func looksLikeAddress(raw string) bool {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "gopher://") || lower == "localhost" || strings.HasPrefix(lower, "localhost:") {
		return true
	}
	return strings.ContainsAny(raw, ".:[/")
}

// suggest returns the command closest to input, or "" when nothing is close.
func suggest(input string) string {
	ranks := fuzzy.RankFindNormalizedFold(input, names)
	if len(ranks) > 0 {
		best := ranks[0]
		for _, rank := range ranks[1:] {
			if rank.Distance < best.Distance {
				best = rank
			}
		}
		return best.Target
	}
	best, bestDist := "", 3
	for _, name := range names {
		if d := fuzzy.LevenshteinDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}
