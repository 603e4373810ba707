package models

import (
	"fmt"
	"time"
)

// Entry is a stored credential. Password stays empty unless the entry was
// fetched by id.
type Entry struct {
	ID        int64  `json:"id"`
	Website   string `json:"website"`
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Created parses CreatedAt; the service emits RFC 3339 with a trailing Z.
func (e Entry) Created() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, e.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Revealed reports whether the password has been materialized.
func (e Entry) Revealed() bool {
	return e.Password != ""
}

func (e Entry) String() string {
	created := e.CreatedAt
	if t, ok := e.Created(); ok {
		created = t.Local().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%d\t%s\t%s\t%s", e.ID, e.Website, e.Username, created)
}

// EntryInput is the body of POST /entries.
type EntryInput struct {
	Website  string `json:"website"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// EntryUpdate is the body of PUT /entries/{id}; nil fields are left as is.
type EntryUpdate struct {
	Website  *string `json:"website,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u EntryUpdate) Empty() bool {
	return u.Website == nil && u.Username == nil && u.Password == nil
}
