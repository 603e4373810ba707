package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
// Each command receives the words following its name.
type execIface interface {
	Gen(ctx context.Context, args []string) error
	Suggest(ctx context.Context, args []string) error
	Hash(ctx context.Context, args []string) error
	Crack(ctx context.Context, args []string) error
	Samples(ctx context.Context, args []string) error
	Jobs(ctx context.Context, args []string) error
	Cancel(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Reveal(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Health(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  gen [-l length] [-c ulds] [-n count]       generate passwords
  suggest <name>                             name-based suggestions
  hash [-append] [-sync|-async] [text]       MD5 of text (prompted when omitted)
  crack [-w wordlist] [-sync|-async] <hash>  crack a hash
  samples                                    crack the sample hashes
  jobs                                       list running jobs
  cancel <job-id>|all                        stop polling a job
  list                                       list stored entries
  add [-g length] <website> [username]       store a credential
  update [-w website] [-u username] [-p] [-g length] <id>
  delete <id>                                delete an entry
  reveal <id>                                show an entry with its password
  history [-n count] [-show record-id]       recent jobs
  verify                                     check the master password, unlock history
  health                                     password manager health
  exit | quit                                leave the program`

// runREPL starts a simple read-eval-print loop for the SecuraPass CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, when ctx is done, or when
// the user types "exit" or "quit". A command error is printed and the loop
// goes on. Every line is written through out, which serialises it with job
// notifications.
func runREPL(ctx context.Context, a execIface, statusFn func() string, out func(args ...any), scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		out(fmt.Sprintf("sp (%s)> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			out(helpText)
		case "gen":
			err = a.Gen(ctx, args)
		case "suggest":
			err = a.Suggest(ctx, args)
		case "hash":
			err = a.Hash(ctx, args)
		case "crack":
			err = a.Crack(ctx, args)
		case "samples":
			err = a.Samples(ctx, args)
		case "jobs":
			err = a.Jobs(ctx, args)
		case "cancel":
			err = a.Cancel(ctx, args)
		case "l", "list":
			err = a.List(ctx, args)
		case "add":
			err = a.Add(ctx, args)
		case "update":
			err = a.Update(ctx, args)
		case "delete", "rm":
			err = a.Delete(ctx, args)
		case "reveal", "show":
			err = a.Reveal(ctx, args)
		case "history":
			err = a.History(ctx, args)
		case "verify", "unlock":
			err = a.Verify(ctx, args)
		case "health":
			err = a.Health(ctx, args)
		case "exit", "quit":
			out("Bye!")
			return
		default:
			out("Unknown command:", cmd)
		}

		if err != nil {
			out("Error:", err)
		}
	}
}
