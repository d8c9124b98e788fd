package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. The real
// App type satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	NewDraft(ctx context.Context) error
	Open(ctx context.Context, id string) error
	Title(ctx context.Context, text string) error
	Body(ctx context.Context) error
	Image(ctx context.Context, path string) error
	RemoveImage(ctx context.Context) error
	Status(ctx context.Context) error
	Preview(ctx context.Context) error
	Save(ctx context.Context) error
	Publish(ctx context.Context) error
	CloseDraft(ctx context.Context) error
	Recover(ctx context.Context, key string) error
	Like(ctx context.Context, id string) error
}

const (
	helpLoggedOut = "Available commands: login, recover, exit"
	helpLoggedIn  = "Available commands: new, open <id>, title <text>, body, image <path>, rmimage, " +
		"status, preview, save, publish, close, recover [key|last], like <post-id>, logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit". The first
// word of a line is the command; the rest of the line is its argument, so
// "title My first post" sets the whole title.
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gd %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "new":
			cmdErr = a.NewDraft(ctx)
		case "open":
			cmdErr = a.Open(ctx, arg)
		case "title":
			cmdErr = a.Title(ctx, arg)
		case "body":
			cmdErr = a.Body(ctx)
		case "image":
			cmdErr = a.Image(ctx, arg)
		case "rmimage":
			cmdErr = a.RemoveImage(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "preview":
			cmdErr = a.Preview(ctx)
		case "save":
			cmdErr = a.Save(ctx)
		case "publish":
			cmdErr = a.Publish(ctx)
		case "close":
			cmdErr = a.CloseDraft(ctx)
		case "recover":
			cmdErr = a.Recover(ctx, arg)
		case "like":
			cmdErr = a.Like(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
