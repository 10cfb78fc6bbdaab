package manuscript

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	percentToken = regexp.MustCompile(`^\d+(\.\d+)?%$`)
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Margins follow the CSS shorthand, one to four percentage values.
		validate.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
			fields := strings.Fields(fl.Field().String())
			if len(fields) == 0 || len(fields) > 4 {
				return false
			}
			for _, f := range fields {
				if !percentToken.MatchString(f) {
					return false
				}
			}
			return true
		})
	})
	return validate
}

// Validate checks the layout against the ranges the preview supports.
func (l LayoutPreference) Validate() error {
	if err := validatorInstance().Struct(l); err != nil {
		return fmt.Errorf("layout preference: %w", err)
	}
	return nil
}

// Validate checks the cover style enums and opacity bounds.
func (c CoverStyle) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return fmt.Errorf("cover style: %w", err)
	}
	return nil
}

// Validate checks the structural invariants of a book loaded from outside
// the store: at least one chapter, unique chapter ids and a bounded ledger.
func (b Book) Validate() error {
	if len(b.Chapters) == 0 {
		return fmt.Errorf("book %q has no chapters", b.ID)
	}
	seen := make(map[string]struct{}, len(b.Chapters))
	for _, ch := range b.Chapters {
		if ch.ID == "" {
			return fmt.Errorf("book %q has a chapter without id", b.ID)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("book %q has duplicate chapter id %q", b.ID, ch.ID)
		}
		seen[ch.ID] = struct{}{}
		if len(ch.Revisions) > LedgerCapacity {
			return fmt.Errorf("chapter %q holds %d revisions, capacity is %d", ch.ID, len(ch.Revisions), LedgerCapacity)
		}
	}
	return nil
}
