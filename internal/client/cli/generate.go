package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/securapass/internal/client/passgen"
)

const defaultLength = 16

func (a *App) Gen(_ context.Context, args []string) error {
	fs := newFlagSet("gen")
	length := fs.Int("l", defaultLength, "length")
	set := fs.String("c", "", "character classes: u, l, d, s")
	count := fs.Int("n", 1, "how many")
	if err := fs.Parse(args); err != nil {
		return usageError("gen [-l length] [-c ulds] [-n count]")
	}

	classes, err := passgen.ParseClasses(*set)
	if err != nil {
		return err
	}
	for i := 0; i < max(*count, 1); i++ {
		c, err := a.gen.Generate(*length, classes)
		if err != nil {
			return err
		}
		a.printf("%s\t%s\n", c.Password, c.Strength)
	}
	return nil
}

func (a *App) Suggest(_ context.Context, args []string) error {
	name := strings.Join(args, " ")
	list := passgen.Suggest(name)
	if len(list) == 0 {
		return usageError("suggest <name>")
	}
	for _, c := range list {
		a.printf("%s\t%s\n", c.Password, c.Strength)
	}
	return nil
}
