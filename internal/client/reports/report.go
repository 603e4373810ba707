// Package reports renders crack outcomes as text reports, stores them under a
// local directory and optionally uploads them to S3-compatible storage.
package reports

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/hashx"
)

const header = "SecuraPass - Password Cracking Report"

type Row struct {
	Hash      string
	Found     bool
	Plaintext string
	// Mismatch is set when the returned plaintext does not hash to Hash.
	Mismatch bool
}

func (r Row) Status() string {
	switch {
	case !r.Found:
		return "Not Found"
	case r.Mismatch:
		return "Cracked: " + r.Plaintext + " (local check failed)"
	default:
		return "Cracked: " + r.Plaintext
	}
}

type Report struct {
	JobID string
	// Ref names the stored file. Reports of synchronous runs have no job id
	// and get a random one.
	Ref       string
	CreatedAt time.Time
	Rows      []Row
	Stats     models.CrackStats
}

// FromCrack builds a report from a crack result. target is the submitted
// hash and is ignored for samples runs.
func FromCrack(jobID, target string, res models.CrackResult, at time.Time) Report {
	rep := Report{JobID: jobID, Ref: jobID, CreatedAt: at}
	if jobID == "" {
		rep.Ref = "sync-" + uuid.NewString()[:8]
	}

	if res.IsSamples() {
		for _, row := range res.Report {
			rep.Rows = append(rep.Rows, newRow(row.Hash, row.Found, row.Plaintext))
		}
		rep.Stats = res.Stats()
		return rep
	}

	rep.Rows = []Row{newRow(target, res.Found, res.Plaintext)}
	if res.Found {
		rep.Stats = models.CrackResult{Cracked: []string{res.Plaintext}}.Stats()
	}
	return rep
}

func newRow(hash string, found bool, plaintext string) Row {
	row := Row{Hash: hash, Found: found, Plaintext: plaintext}
	if found {
		if ok, err := hashx.Verify(plaintext, hash); err == nil && !ok {
			row.Mismatch = true
		}
	}
	return row
}

// FileName is the name the report is stored under.
func (r Report) FileName() string {
	id := r.Ref
	if id == "" {
		id = r.JobID
	}
	if id == "" {
		id = "sync"
	}
	id = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
	return fmt.Sprintf("report-%s-%s.txt", r.CreatedAt.UTC().Format("20060102T150405Z"), id)
}

func (r Report) Render() []byte {
	var b bytes.Buffer

	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("=", len(header)) + "\n\n")
	if r.JobID != "" {
		fmt.Fprintf(&b, "Job: %s\n", r.JobID)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", r.CreatedAt.UTC().Format(time.RFC3339))

	for _, row := range r.Rows {
		fmt.Fprintf(&b, "Hash: %s\n", row.Hash)
		if t := hashx.Detect(row.Hash); t != hashx.Unknown {
			fmt.Fprintf(&b, "Type: %s\n", strings.ToUpper(string(t)))
		}
		fmt.Fprintf(&b, "Status: %s\n\n", row.Status())
	}

	if r.Stats.Total > 0 {
		b.WriteString("Cracked Password Stats\n")
		fmt.Fprintf(&b, "Total Cracked: %d\n", r.Stats.Total)
		fmt.Fprintf(&b, "Average Length: %.2f\n", r.Stats.AverageLength)
		fmt.Fprintf(&b, "Shortest Password: %s\n", r.Stats.Shortest)
		fmt.Fprintf(&b, "Longest Password: %s\n", r.Stats.Longest)
	}
	return b.Bytes()
}
