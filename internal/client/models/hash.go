package models

// HashRequest is the body of POST /api/hash/start and /api/hash/run. Append
// asks the service to add the digest to its samples file.
type HashRequest struct {
	Text   string `json:"text"`
	Append bool   `json:"append"`
}

type HashResult struct {
	Hash       string `json:"hash"`
	AppendedTo string `json:"appended_to,omitempty"`
}
