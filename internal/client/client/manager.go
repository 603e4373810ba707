package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/securapass/internal/client/models"
)

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, call{
		base:   c.managerURL,
		method: http.MethodGet,
		path:   "/health",
	})
}

func (c *HTTPClient) VerifyMaster(ctx context.Context, password []byte) (bool, error) {
	if len(password) == 0 {
		return false, invalidInput("master password")
	}

	in := struct {
		Password string `json:"password"`
	}{Password: string(password)}

	var out struct {
		Verified bool `json:"verified"`
	}
	if err := c.do(ctx, call{
		base:   c.managerURL,
		method: http.MethodPost,
		path:   "/verify-master",
		in:     in,
		out:    &out,
	}); err != nil {
		return false, err
	}
	return out.Verified, nil
}

func (c *HTTPClient) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	if err := c.do(ctx, call{
		base:   c.managerURL,
		method: http.MethodGet,
		path:   "/entries",
		out:    &entries,
	}); err != nil {
		return nil, err
	}

	// listings never carry passwords, whatever the server sends
	for i := range entries {
		entries[i].Password = ""
	}
	return entries, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, in models.EntryInput) (*models.Entry, error) {
	switch {
	case strings.TrimSpace(in.Website) == "":
		return nil, invalidInput("website")
	case strings.TrimSpace(in.Username) == "":
		return nil, invalidInput("username")
	case in.Password == "":
		return nil, invalidInput("password")
	}

	var e models.Entry
	if err := c.do(ctx, call{
		base:   c.managerURL,
		method: http.MethodPost,
		path:   "/entries",
		in:     in,
		out:    &e,
	}); err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, fmt.Errorf("%w: create entry: missing id", ErrUnexpectedResponse)
	}
	e.Password = ""
	return &e, nil
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, id int64, upd models.EntryUpdate) error {
	if id <= 0 {
		return invalidInput("entry id")
	}
	if upd.Empty() {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	return c.do(ctx, call{
		base:   c.managerURL,
		method: http.MethodPut,
		path:   entryPath(id),
		in:     upd,
	})
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidInput("entry id")
	}

	return c.do(ctx, call{
		base:   c.managerURL,
		method: http.MethodDelete,
		path:   entryPath(id),
	})
}

func (c *HTTPClient) GetEntry(ctx context.Context, id int64) (*models.Entry, error) {
	if id <= 0 {
		return nil, invalidInput("entry id")
	}

	var e models.Entry
	if err := c.do(ctx, call{
		base:     c.managerURL,
		method:   http.MethodGet,
		path:     entryPath(id),
		out:      &e,
		withAuth: true,
	}); err != nil {
		return nil, err
	}
	return &e, nil
}

func entryPath(id int64) string {
	return "/entries/" + strconv.FormatInt(id, 10)
}
