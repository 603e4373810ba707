package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securapass/internal/client/config"
	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/client/poller"
	"github.com/dmitrijs2005/securapass/internal/client/services"
	"github.com/dmitrijs2005/securapass/internal/common"
	"github.com/dmitrijs2005/securapass/internal/hashx"
)

var errNoSuchJob = errors.New("no such running job")

func (a *App) Crack(ctx context.Context, args []string) error {
	const usage = "crack [-w wordlist] [-sync|-async] <hash>"

	fs := newFlagSet("crack")
	wordlist := fs.String("w", "", "wordlist known to the cracker")
	mode := modeFlags(fs, a.config.Mode)
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return usageError(usage)
	}
	m, err := mode()
	if err != nil {
		return err
	}

	req := models.CrackRequest{TargetHash: fs.Arg(0), Wordlist: *wordlist}
	if hashx.Detect(req.TargetHash) == hashx.Unknown {
		a.printf("Warning: %q does not look like an MD5, SHA or bcrypt hash\n", req.TargetHash)
	}

	if m == config.ModeSync {
		out, err := a.crack.Run(ctx, req)
		if err != nil {
			return err
		}
		a.printCrack(out)
		return nil
	}
	return a.startCrack(ctx, req, req.TargetHash)
}

// Samples cracks the service's sample hashes. There is no blocking endpoint
// for samples, so it always runs as a job.
func (a *App) Samples(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return usageError("samples")
	}
	return a.startCrack(ctx, models.CrackRequest{UseSamples: true}, "samples")
}

func (a *App) startCrack(ctx context.Context, req models.CrackRequest, subject string) error {
	h, err := a.crack.Start(ctx, req, func(o *services.CrackOutcome) {
		a.untrack(o.JobID)
		a.printCrack(o)
	})
	if err != nil {
		return err
	}
	a.track(h.JobID(), string(models.JobKindCrack), subject, h)
	a.printf("Job %s submitted, polling every %s\n", h.JobID(), a.config.PollInterval)
	return nil
}

func (a *App) Hash(ctx context.Context, args []string) error {
	fs := newFlagSet("hash")
	appendSample := fs.Bool("append", false, "add the digest to the samples file")
	mode := modeFlags(fs, a.config.Mode)
	if err := fs.Parse(args); err != nil {
		return usageError("hash [-append] [-sync|-async] [text]")
	}
	m, err := mode()
	if err != nil {
		return err
	}

	text := strings.Join(fs.Args(), " ")
	if text == "" {
		secret, err := GetSecret(a.out, "Text to hash")
		if err != nil {
			return err
		}
		defer common.WipeByteArray(secret)
		text = string(secret)
	}
	req := models.HashRequest{Text: text, Append: *appendSample}

	if m == config.ModeSync {
		out, err := a.hash.Run(ctx, req)
		if err != nil {
			return err
		}
		a.printHash(out)
		return nil
	}

	h, err := a.hash.Start(ctx, req, func(o *services.HashOutcome) {
		a.untrack(o.JobID)
		a.printHash(o)
	})
	if err != nil {
		return err
	}
	a.track(h.JobID(), string(models.JobKindHash), "", h)
	a.printf("Job %s submitted, polling every %s\n", h.JobID(), a.config.PollInterval)
	return nil
}

func (a *App) Jobs(_ context.Context, _ []string) error {
	jobs := a.snapshotJobs()
	if len(jobs) == 0 {
		a.println("No running jobs")
		return nil
	}
	for _, j := range jobs {
		a.printf("%s\t%s\t%s\t%s\n", j.id, j.kind, j.subject, j.handle.State())
	}
	return nil
}

// Cancel stops polling one job, or every job with "all". The server keeps
// working on it; only the local polling ends.
func (a *App) Cancel(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("cancel <job-id>|all")
	}

	if args[0] == "all" {
		for _, j := range a.snapshotJobs() {
			j.handle.Cancel()
		}
		return nil
	}

	for _, j := range a.snapshotJobs() {
		if j.id == args[0] {
			j.handle.Cancel()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", errNoSuchJob, args[0])
}

func jobPrefix(jobID string) string {
	if jobID == "" {
		return ""
	}
	return "[job " + jobID + "] "
}

func (a *App) printCrack(o *services.CrackOutcome) {
	p := jobPrefix(o.JobID)
	if o.State != poller.Completed {
		a.printOutcomeError(p, o.State, o.Err)
		return
	}

	var b strings.Builder
	for _, row := range o.Report.Rows {
		fmt.Fprintf(&b, "%s%s\t%s\n", p, row.Hash, row.Status())
	}
	if st := o.Report.Stats; o.Result.IsSamples() {
		fmt.Fprintf(&b, "%sCracked %d, average length %.2f\n", p, st.Total, st.AverageLength)
	}
	switch {
	case o.ReportErr != nil && o.Saved.Path == "":
		fmt.Fprintf(&b, "%sReport not saved: %v\n", p, o.ReportErr)
	case o.ReportErr != nil:
		fmt.Fprintf(&b, "%sReport saved to %s, upload failed: %v\n", p, o.Saved.Path, o.ReportErr)
	case o.Saved.Key != "":
		fmt.Fprintf(&b, "%sReport saved to %s and uploaded as %s\n", p, o.Saved.Path, o.Saved.Key)
	case o.Saved.Path != "":
		fmt.Fprintf(&b, "%sReport saved to %s\n", p, o.Saved.Path)
	}
	a.printf("%s", b.String())
}

func (a *App) printHash(o *services.HashOutcome) {
	p := jobPrefix(o.JobID)
	if o.State != poller.Completed {
		a.printOutcomeError(p, o.State, o.Err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%sMD5: %s\n", p, o.Result.Hash)
	if o.Result.AppendedTo != "" {
		fmt.Fprintf(&b, "%sAppended to %s\n", p, o.Result.AppendedTo)
	}
	if o.Mismatch {
		fmt.Fprintf(&b, "%sWarning: local MD5 is %s\n", p, o.Local)
	}
	a.printf("%s", b.String())
}

func (a *App) printOutcomeError(prefix string, state poller.State, err error) {
	var jf *poller.JobFailedError
	switch {
	case errors.As(err, &jf):
		a.printf("%sFailed: %s\n", prefix, jf.Message)
	case state == poller.Aborted, state == poller.Expired:
		a.printf("%s%s\n", prefix, state)
	default:
		a.printf("%s%s: %v\n", prefix, state, err)
	}
}
