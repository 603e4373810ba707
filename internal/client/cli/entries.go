package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/client/passgen"
	"github.com/dmitrijs2005/securapass/internal/common"
)

func (a *App) List(ctx context.Context, _ []string) error {
	list, err := a.entries.List(ctx)
	if err != nil {
		return err
	}

	if list.Stale {
		a.printf("Password manager unreachable, showing entries cached at %s\n",
			list.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	if len(list.Entries) == 0 {
		a.println("No entries")
		return nil
	}

	var b strings.Builder
	b.WriteString("ID\tWebsite\tUsername\tCreated\n")
	for _, e := range list.Entries {
		b.WriteString(e.String() + "\n")
	}
	a.printf("%s", b.String())
	return nil
}

// readPasswordOrGenerate prompts for a password, or generates one of the
// given length when it is positive.
func (a *App) readPasswordOrGenerate(length int) ([]byte, error) {
	if length > 0 {
		c, err := a.gen.Generate(length, passgen.Classes{Upper: true, Lower: true, Digit: true, Symbol: true})
		if err != nil {
			return nil, err
		}
		a.printf("Generated password (%s): %s\n", c.Strength, c.Password)
		return []byte(c.Password), nil
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return nil, err
	}
	if len(pw) > 0 {
		a.printf("Strength: %s\n", passgen.ClassifyPassword(string(pw)))
	}
	return pw, nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	const usage = "add [-g length] <website> [username]"

	fs := newFlagSet("add")
	genLength := fs.Int("g", 0, "generate a password of this length")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 || fs.NArg() > 2 {
		return usageError(usage)
	}

	in := models.EntryInput{Website: fs.Arg(0), Username: fs.Arg(1)}
	if in.Username == "" {
		username, err := GetSimpleText(a.reader, "Username", a.out)
		if err != nil {
			return err
		}
		in.Username = username
	}

	pw, err := a.readPasswordOrGenerate(*genLength)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	in.Password = string(pw)

	e, err := a.entries.Add(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Entry %d added\n", e.ID)
	return nil
}

func (a *App) Update(ctx context.Context, args []string) error {
	const usage = "update [-w website] [-u username] [-p] [-g length] <id>"

	fs := newFlagSet("update")
	website := fs.String("w", "", "new website")
	username := fs.String("u", "", "new username")
	askPassword := fs.Bool("p", false, "prompt for a new password")
	genLength := fs.Int("g", 0, "generate a new password of this length")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return usageError(usage)
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	var upd models.EntryUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "w":
			upd.Website = website
		case "u":
			upd.Username = username
		}
	})
	if *askPassword || *genLength > 0 {
		pw, err := a.readPasswordOrGenerate(*genLength)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)
		s := string(pw)
		upd.Password = &s
	}

	if err := a.entries.Update(ctx, id, upd); err != nil {
		return err
	}
	a.printf("Entry %d updated\n", id)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete entry %d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled")
		return nil
	}

	if err := a.entries.Delete(ctx, id); err != nil {
		return err
	}
	a.printf("Entry %d deleted\n", id)
	return nil
}

func (a *App) Reveal(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("reveal <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	e, err := a.entries.Reveal(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Website:  %s\nUsername: %s\nPassword: %s\n", e.Website, e.Username, e.Password)
	return nil
}
