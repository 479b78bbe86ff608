package server

import (
	"fmt"

	"ctxkeep/internal/api"
	"ctxkeep/internal/models"
)

// validateItemInput checks one submitted item against its kind's required
// fields. The returned error text is surfaced verbatim in the per-item
// errors list.
func validateItemInput(in api.ItemInput) error {
	if in.Kind == "" {
		return fmt.Errorf("Missing required field: kind")
	}
	kind := models.Kind(in.Kind)
	if !kind.Valid() {
		return fmt.Errorf("Invalid kind: %s", in.Kind)
	}
	switch kind {
	case models.KindText:
		if in.Text == "" {
			return fmt.Errorf("Text items must have text field")
		}
	case models.KindURL:
		if in.URL == "" {
			return fmt.Errorf("URL items must have url field")
		}
	case models.KindImage, models.KindFile:
		if in.AttachmentData == "" {
			return fmt.Errorf("Image and file items must have attachmentData field")
		}
	}
	return nil
}
