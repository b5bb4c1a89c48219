package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name       string
		candidates []FileCandidate
		want       []string
	}{
		{
			name: "mixed batch keeps only the valid file",
			candidates: []FileCandidate{
				{Name: "a.png", MimeType: "image/png", SizeBytes: 1000},
				{Name: "b.exe", MimeType: "application/octet-stream", SizeBytes: 1000},
			},
			want: []string{"a.png"},
		},
		{
			name: "oversized image is rejected",
			candidates: []FileCandidate{
				{Name: "big.png", MimeType: "image/png", SizeBytes: 6_000_000},
			},
			want: []string{},
		},
		{
			name: "size limit is inclusive",
			candidates: []FileCandidate{
				{Name: "edge.jpg", MimeType: "image/jpeg", SizeBytes: 5 * 1024 * 1024},
				{Name: "over.jpg", MimeType: "image/jpeg", SizeBytes: 5*1024*1024 + 1},
			},
			want: []string{"edge.jpg"},
		},
		{
			name: "order is preserved",
			candidates: []FileCandidate{
				{Name: "3.webp", MimeType: "image/webp", SizeBytes: 3},
				{Name: "skip.gif", MimeType: "image/gif", SizeBytes: 3},
				{Name: "1.bmp", MimeType: "image/bmp", SizeBytes: 1},
				{Name: "2.jpg", MimeType: "image/jpg", SizeBytes: 2},
			},
			want: []string{"3.webp", "1.bmp", "2.jpg"},
		},
		{
			name: "mime type match is exact",
			candidates: []FileCandidate{
				{Name: "upper.png", MimeType: "IMAGE/PNG", SizeBytes: 10},
				{Name: "params.png", MimeType: "image/png; charset=binary", SizeBytes: 10},
			},
			want: []string{},
		},
		{
			name: "negative size is rejected",
			candidates: []FileCandidate{
				{Name: "forged.png", MimeType: "image/png", SizeBytes: -1},
				{Name: "empty.png", MimeType: "image/png", SizeBytes: 0},
			},
			want: []string{"empty.png"},
		},
		{
			name:       "empty input",
			candidates: nil,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.candidates, policy)
			assert.Equal(t, tt.want, Names(got))
		})
	}
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	in := []FileCandidate{
		{Name: "x.exe", MimeType: "application/x-msdownload", SizeBytes: 1},
		{Name: "y.png", MimeType: "image/png", SizeBytes: 1},
	}
	_ = Validate(in, DefaultPolicy())

	assert.Equal(t, "x.exe", in[0].Name)
	assert.Equal(t, "y.png", in[1].Name)
}
