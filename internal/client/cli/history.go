package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/client/repositories/jobs"
	"github.com/dmitrijs2005/securapass/internal/client/services"
	"github.com/dmitrijs2005/securapass/internal/common"
)

const defaultHistory = 20

func (a *App) History(ctx context.Context, args []string) error {
	fs := newFlagSet("history")
	limit := fs.Int("n", defaultHistory, "how many records")
	show := fs.String("show", "", "record id whose result to show")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return usageError("history [-n count] [-show record-id]")
	}

	if *show != "" {
		return a.showResult(ctx, *show)
	}

	list, err := a.history.List(ctx, *limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No jobs yet")
		return nil
	}

	var b strings.Builder
	for _, r := range list {
		remote := r.RemoteID
		if remote == "" {
			remote = "sync"
		}
		b.WriteString(strings.Join([]string{
			r.ID,
			r.SubmittedAt.Local().Format("2006-01-02 15:04:05"),
			string(r.Kind),
			remote,
			r.Subject,
			r.State,
		}, "\t"))
		if r.Error != "" {
			b.WriteString("\t" + r.Error)
		}
		b.WriteString("\n")
	}
	a.printf("%s", b.String())
	return nil
}

func (a *App) showResult(ctx context.Context, id string) error {
	rec, err := a.history.Get(ctx, id)
	if errors.Is(err, jobs.ErrNotFound) {
		return errors.New("no such history record")
	}
	if err != nil {
		return err
	}

	switch rec.Kind {
	case models.JobKindCrack:
		var res models.CrackResult
		if err := a.history.Result(ctx, id, &res); err != nil {
			return historyError(err)
		}
		if res.IsSamples() {
			for _, row := range res.Report {
				a.printf("%s\t%v\t%s\n", row.Hash, row.Found, row.Plaintext)
			}
			return nil
		}
		a.printf("found=%v plaintext=%s\n", res.Found, res.Plaintext)
	case models.JobKindHash:
		var res models.HashResult
		if err := a.history.Result(ctx, id, &res); err != nil {
			return historyError(err)
		}
		a.printf("MD5: %s\n", res.Hash)
	default:
		return fmt.Errorf("unknown job kind %q", rec.Kind)
	}
	return nil
}

func historyError(err error) error {
	if errors.Is(err, services.ErrLocked) {
		return errors.New("history is locked, run 'verify' first")
	}
	return err
}

// Verify checks the master password and unlocks the sealed history.
func (a *App) Verify(ctx context.Context, _ []string) error {
	pw, err := GetSecret(a.out, "Master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := a.history.Unlock(ctx, pw); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.println("Master password rejected")
			return nil
		}
		return err
	}
	a.println("Master password verified, history unlocked")
	return nil
}

func (a *App) Health(ctx context.Context, _ []string) error {
	if err := a.client.Health(ctx); err != nil {
		a.printf("Password manager: unavailable (%v)\n", err)
		return nil
	}
	a.println("Password manager: ok")
	return nil
}
