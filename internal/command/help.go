package command

// HelpLines is the static help screen.
var HelpLines = []string{
	"Commands:",
	"  N                     open menu entry N",
	"  back, b               go back one location",
	"  forward, f            undo the last back",
	"  reload, r             fetch the current location again",
	"  go HOST[:PORT][/SEL]  open an address (a bare address works too)",
	"  s HOST[:PORT]         switch to the root menu of another server",
	"  search N QUERY        submit QUERY to search entry N",
	"  save [PATH]           save the current document",
	"  info, where           show the current gopher:// URL",
	"  mark                  bookmark the current location",
	"  bookmarks             list bookmarks",
	"  unmark N              delete bookmark N",
	"  help, h, ?            show this help",
	"  quit, q               exit",
	"",
	"Keys: up/down move, pgup/pgdown page, enter opens the highlighted entry.",
}
