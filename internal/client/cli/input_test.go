package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(in, "Again?", &out)
	require.Error(t, err)
}

func stubPassword(t *testing.T, value string, err error) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return []byte(value), nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func TestGetPassword(t *testing.T) {
	stubPassword(t, "s3cr3t", nil)

	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", string(pw))
	assert.Equal(t, "Enter password: \n", out.String())
}

func TestGetSecret_Error(t *testing.T) {
	stubPassword(t, "", errors.New("not a terminal"))

	_, err := GetSecret(&bytes.Buffer{}, "Master password")
	require.ErrorContains(t, err, "not a terminal")
}

func TestConfirm(t *testing.T) {
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false} {
		got, err := Confirm(bufio.NewReader(strings.NewReader(in)), "Sure?", &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
