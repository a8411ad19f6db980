package validation

import (
	"fmt"
	"strings"

	"careline/pkg/errs"
	"careline/pkg/models"
)

// Content returns the trimmed message text, or ErrInvalidArgument when it
// trims to empty. Text is required even for attachment messages.
func Content(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("%w: message content is required", errs.ErrInvalidArgument)
	}
	return trimmed, nil
}

// Attachment checks a non-nil attachment against the supported kinds.
// Unrecognized kinds are not an error here; the message service drops
// them before validation. A recognized kind with missing payload is
// rejected.
func Attachment(a *models.Attachment) error {
	if a == nil {
		return nil
	}
	switch a.Kind {
	case models.AttachmentImage:
		if a.ImageURL == "" {
			return fmt.Errorf("%w: image attachment requires a url", errs.ErrInvalidArgument)
		}
	case models.AttachmentLocation:
		if a.Location == nil {
			return fmt.Errorf("%w: latitude and longitude are required", errs.ErrInvalidArgument)
		}
	case models.AttachmentDocument:
		if a.DocumentURL == "" {
			return fmt.Errorf("%w: document attachment requires a url", errs.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unsupported attachment kind %q", errs.ErrInvalidArgument, a.Kind)
	}
	return nil
}
