package models

// CrackRequest is the body of POST /api/cracker/start and /api/cracker/run.
// Start accepts either UseSamples or TargetHash; run requires TargetHash.
type CrackRequest struct {
	UseSamples bool   `json:"use_samples,omitempty"`
	TargetHash string `json:"target_hash,omitempty"`
	Wordlist   string `json:"wordlist,omitempty"`
}

// CrackResult is the payload of a finished crack job. A single-hash run fills
// Found/Plaintext; a samples run fills Report/Cracked/TotalCracked.
type CrackResult struct {
	Found     bool   `json:"found"`
	Plaintext string `json:"plaintext,omitempty"`

	Report       []CrackReportRow `json:"report,omitempty"`
	Cracked      []string         `json:"cracked,omitempty"`
	TotalCracked int              `json:"total_cracked,omitempty"`
}

// IsSamples reports whether the result came from a samples run.
func (r CrackResult) IsSamples() bool {
	return r.Report != nil
}

type CrackReportRow struct {
	Hash      string `json:"hash"`
	Found     bool   `json:"found"`
	Plaintext string `json:"plaintext,omitempty"`
}

// CrackStats summarises the cracked plaintexts of a samples run.
type CrackStats struct {
	Total         int
	AverageLength float64
	Shortest      string
	Longest       string
}

// Stats computes length statistics over Cracked. The zero value is returned
// when nothing was cracked.
func (r CrackResult) Stats() CrackStats {
	if len(r.Cracked) == 0 {
		return CrackStats{}
	}
	st := CrackStats{Total: len(r.Cracked), Shortest: r.Cracked[0], Longest: r.Cracked[0]}
	sum := 0
	for _, p := range r.Cracked {
		sum += len(p)
		if len(p) < len(st.Shortest) {
			st.Shortest = p
		}
		if len(p) > len(st.Longest) {
			st.Longest = p
		}
	}
	st.AverageLength = float64(sum) / float64(len(r.Cracked))
	return st
}
