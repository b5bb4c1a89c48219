package upload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.ElementsMatch(t,
		[]string{"image/jpeg", "image/png", "image/jpg", "image/bmp", "image/webp"},
		p.AllowedMimeTypes)
	assert.Equal(t, int64(5_242_880), p.MaxSizeBytes)
	assert.Equal(t, ".jpeg, .png, .jpg, .bmp, .webp", p.Accept())
	assert.Equal(t, "5MiB", p.MaxSize())
}

func TestDefaultPolicyReturnsCopy(t *testing.T) {
	p := DefaultPolicy()
	p.AllowedMimeTypes[0] = "text/plain"

	assert.Equal(t, "image/jpeg", DefaultPolicy().AllowedMimeTypes[0])
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name:    "valid",
			doc:     "allowed_mime_types: [image/png]\nmax_size_bytes: 10\n",
			wantErr: false,
		},
		{
			name:    "no mime types",
			doc:     "max_size_bytes: 10\n",
			wantErr: true,
		},
		{
			name:    "zero size",
			doc:     "allowed_mime_types: [image/png]\nmax_size_bytes: 0\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			doc:     "allowed_mime_types: [image/png\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy([]byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPolicy))
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Allows(FileCandidate{Name: "a.png", MimeType: "image/png", SizeBytes: 10}))
			assert.False(t, p.Allows(FileCandidate{Name: "a.png", MimeType: "image/png", SizeBytes: 11}))
		})
	}
}
