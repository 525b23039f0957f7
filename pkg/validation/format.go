// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/salemate/franchise-performance/pkg/constants"
)

// OutputFormats lists the supported report output formats.
var OutputFormats = []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, supported := range OutputFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %q",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}
