package video

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/apperror"
)

func checkTitle(verr *apperror.ValidationError, title string) {
	switch n := utf8.RuneCountInString(strings.TrimSpace(title)); {
	case n < video.TitleMinLen:
		verr.Add("title", fmt.Sprintf("Title must be at least %d characters", video.TitleMinLen))
	case n > video.TitleMaxLen:
		verr.Add("title", fmt.Sprintf("Title must be less than %d characters", video.TitleMaxLen))
	}
}

func checkDescription(verr *apperror.ValidationError, description string) {
	switch n := utf8.RuneCountInString(strings.TrimSpace(description)); {
	case n < video.DescriptionMinLen:
		verr.Add("description", fmt.Sprintf("Description must be at least %d characters", video.DescriptionMinLen))
	case n > video.DescriptionMaxLen:
		verr.Add("description", fmt.Sprintf("Description must be less than %d characters", video.DescriptionMaxLen))
	}
}

// checkURL reports a missing or non-absolute URL. label is the field's display
// name, e.g. "video URL".
func checkURL(verr *apperror.ValidationError, field, label, raw string) {
	if strings.TrimSpace(raw) == "" {
		verr.Add(field, strings.ToUpper(label[:1])+label[1:]+" is required")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		verr.Add(field, "Invalid "+label)
	}
}

func checkVisibility(verr *apperror.ValidationError, v video.Visibility) {
	if !v.Valid() {
		verr.Add("visibility", "Visibility must be either 'public' or 'private'")
	}
}

func checkDuration(verr *apperror.ValidationError, d *int) {
	if d != nil && *d < 0 {
		verr.Add("duration", "Duration must be a positive number")
	}
}

func validationResult(verr *apperror.ValidationError) error {
	if verr.HasErrors() {
		return verr
	}
	return nil
}
