package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSubstitutesEmptyAnswer(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("\n"), &out)

	got, err := p.Default("Enter install location", "/home/me/.mclang")

	require.NoError(t, err)
	assert.Equal(t, "/home/me/.mclang", got)
	assert.Contains(t, out.String(), "prompt: Enter install location. Leave blank for default [/home/me/.mclang]:")
}

func TestDefaultKeepsTypedAnswer(t *testing.T) {
	p := New(strings.NewReader("/opt/mclang\r\n"), &bytes.Buffer{})

	got, err := p.Default("Enter install location", "/home/me/.mclang")

	require.NoError(t, err)
	assert.Equal(t, "/opt/mclang", got)
}

func TestDefaultOnEOF(t *testing.T) {
	p := New(strings.NewReader(""), &bytes.Buffer{})

	got, err := p.Default("Branch", "stable")

	require.NoError(t, err)
	assert.Equal(t, "stable", got)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		def     Default
		want    bool
		wantErr bool
	}{
		{name: "empty with default no", input: "\n", def: DefaultNo, want: false},
		{name: "empty with default yes", input: "\n", def: DefaultYes, want: true},
		{name: "empty without default", input: "\n", def: NoDefault, wantErr: true},
		{name: "yes is case insensitive", input: "YES\n", def: DefaultNo, want: true},
		{name: "short no", input: "n\n", def: DefaultYes, want: false},
		{name: "unknown answer", input: "maybe\n", def: DefaultNo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := p.Confirm("Proceed?", tt.def)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirmShowsDefaultHint(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("\n"), &out)

	_, _ = p.Confirm("Proceed?", DefaultNo)

	assert.Contains(t, out.String(), "Proceed? [y/N]")
}

func TestSequentialAnswersShareTheReader(t *testing.T) {
	p := New(strings.NewReader("/tmp/x\ndev\ny\n"), &bytes.Buffer{})

	root, err := p.Default("root", "a")
	require.NoError(t, err)
	branch, err := p.Default("branch", "stable")
	require.NoError(t, err)
	ok, err := p.Confirm("sure?", DefaultNo)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/x", root)
	assert.Equal(t, "dev", branch)
	assert.True(t, ok)
}
