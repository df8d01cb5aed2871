package storage

import (
	"context"
	"strings"
	"testing"

	"storefront-api/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckUpload(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		ok          bool
	}{
		{name: "png", contentType: "image/png", size: 2048, ok: true},
		{name: "upper case type", contentType: "IMAGE/JPEG", size: 10, ok: true},
		{name: "exactly max", contentType: "image/webp", size: MaxImageSize, ok: true},
		{name: "too big", contentType: "image/png", size: MaxImageSize + 1},
		{name: "pdf", contentType: "application/pdf", size: 10},
		{name: "empty", contentType: "image/png", size: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUpload(tt.contentType, tt.size)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", extension("photo.JPG", "image/jpeg"))
	assert.Equal(t, ".png", extension("blob", "image/png"))
	assert.Equal(t, "", extension("blob", "application/octet-stream"))
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, Disabled{}.Delete(context.Background(), "x"))
}
