package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceSpec(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SourceSpec
		wantErr bool
	}{
		{
			name:  "bare owner",
			input: "willf",
			want:  SourceSpec{Owner: "willf"},
		},
		{
			name:  "owner and name",
			input: "willf/superfork",
			want:  SourceSpec{Owner: "willf", Name: "superfork"},
		},
		{
			name:  "surrounding whitespace",
			input: "  willf/superfork ",
			want:  SourceSpec{Owner: "willf", Name: "superfork"},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "missing owner",
			input:   "/superfork",
			wantErr: true,
		},
		{
			name:    "missing name",
			input:   "willf/",
			wantErr: true,
		},
		{
			name:    "too many segments",
			input:   "a/b/c",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSourceSpec(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceSpecIsOwner(t *testing.T) {
	assert.True(t, SourceSpec{Owner: "willf"}.IsOwner())
	assert.False(t, SourceSpec{Owner: "willf", Name: "superfork"}.IsOwner())
}

func TestRepoRefKeyIsCaseInsensitive(t *testing.T) {
	a := RepoRef{Owner: "WillF", Name: "SuperFork"}
	b := RepoRef{Owner: "willf", Name: "superfork"}

	assert.Equal(t, a.Key(), b.Key())
	// Display casing is preserved.
	assert.Equal(t, "WillF/SuperFork", a.String())
}
