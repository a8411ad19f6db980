package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careline/pkg/errs"
	"careline/pkg/models"
)

func TestContent(t *testing.T) {
	got, err := Content("  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = Content("")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = Content(" \n\t ")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestAttachment(t *testing.T) {
	assert.NoError(t, Attachment(nil))

	assert.NoError(t, Attachment(&models.Attachment{
		Kind: models.AttachmentImage, ImageURL: "https://cdn.example/a.png",
	}))
	assert.NoError(t, Attachment(&models.Attachment{
		Kind: models.AttachmentLocation, Location: &models.GeoPoint{Latitude: 1, Longitude: 2},
	}))
	assert.NoError(t, Attachment(&models.Attachment{
		Kind: models.AttachmentDocument, DocumentURL: "https://cdn.example/a.pdf",
	}))

	assert.ErrorIs(t, Attachment(&models.Attachment{Kind: models.AttachmentImage}), errs.ErrInvalidArgument)
	assert.ErrorIs(t, Attachment(&models.Attachment{Kind: models.AttachmentLocation}), errs.ErrInvalidArgument)
	assert.ErrorIs(t, Attachment(&models.Attachment{Kind: models.AttachmentDocument}), errs.ErrInvalidArgument)
	assert.ErrorIs(t, Attachment(&models.Attachment{Kind: "audio"}), errs.ErrInvalidArgument)
}
