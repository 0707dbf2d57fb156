package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	afterCommand(ctx context.Context)

	Go(ctx context.Context, args []string) error
	Menu(ctx context.Context) error
	Show(ctx context.Context) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	Refresh(ctx context.Context) error
	Page(ctx context.Context, args []string) error
	Size(ctx context.Context, args []string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Filter(ctx context.Context, args []string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	View(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
}

const (
	helpCommon = "Available commands: menu, go <path>, show, (l)ist, page <n> [size], size <n>, (n)ext, (p)rev, " +
		"filter name=value..., new, edit <id>, delete <id>, upload <file>, download <id>, view <id>, history [n|clear], "
	helpGuest  = helpCommon + "login [user], exit"
	helpMember = helpCommon + "whoami, logout, exit"
)

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit".
//
// The prompt shows statusFn (user and current route). Navigation commands
// (go, menu) switch screens; list commands (list, page, size, next, prev,
// filter) act on the current list; next/prev also page through an open PDF.
// Record commands (new, edit, delete, upload, download, view) use the
// actions the current screen supports.
//
// Errors returned by handlers are printed and the loop goes on; handlers
// notify and log their own failures.
//
// Commands and their prompts share reader, so piped input stays in order.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("docadmin %s> ", statusFn(ctx)))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			if a.isLoggedIn(ctx) {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}
			continue

		case "go", "cd":
			err = a.Go(ctx, args)
		case "menu":
			err = a.Menu(ctx)
		case "show":
			err = a.Show(ctx)
		case "login":
			err = a.Login(ctx, args)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.Whoami(ctx)

		case "l", "list", "refresh":
			err = a.Refresh(ctx)
		case "page":
			err = a.Page(ctx, args)
		case "size":
			err = a.Size(ctx, args)
		case "n", "next":
			err = a.Next(ctx)
		case "p", "prev":
			err = a.Prev(ctx)
		case "filter":
			err = a.Filter(ctx, args)

		case "new":
			err = a.New(ctx)
		case "edit":
			err = a.Edit(ctx, args)
		case "delete", "rm":
			err = a.Delete(ctx, args)
		case "upload":
			err = a.Upload(ctx, args)
		case "download":
			err = a.Download(ctx, args)
		case "view":
			err = a.View(ctx, args)
		case "history":
			err = a.History(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if err != nil && !isNotified(err) {
			printlnFn("error:", err)
		}
		a.afterCommand(ctx)
	}
}

// notifiedError marks an error the screens already reported to the user.
type notifiedError struct{ error }

func (e notifiedError) Unwrap() error { return e.error }

func notified(err error) error {
	if err == nil {
		return nil
	}
	return notifiedError{err}
}

func isNotified(err error) bool {
	var ne notifiedError
	return errors.As(err, &ne)
}
