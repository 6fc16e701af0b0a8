package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalInt64(t *testing.T) {
	tests := []struct {
		name    string
		input   *string
		want    *int64
		wantErr bool
	}{
		{
			name:  "nil input",
			input: nil,
			want:  nil,
		},
		{
			name:  "empty string",
			input: stringPtr(""),
			want:  nil,
		},
		{
			name:  "valid number",
			input: stringPtr("123"),
			want:  int64Ptr(123),
		},
		{
			name:  "surrounding spaces",
			input: stringPtr(" 7 "),
			want:  int64Ptr(7),
		},
		{
			name:    "invalid number",
			input:   stringPtr("abc"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptionalInt64(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"", 20, false},
		{"  ", 20, false},
		{"5", 5, false},
		{"0", 0, false},
		{"-3", -3, false},
		{"ten", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIntDefault(tt.input, 20)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePositiveID(t *testing.T) {
	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePositiveID(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalQuery(t *testing.T) {
	assert.Nil(t, OptionalQuery("", false))
	got := OptionalQuery("", true)
	require.NotNil(t, got)
	assert.Equal(t, "", *got)
}

func stringPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }
