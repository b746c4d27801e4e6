package phone

import (
	"fmt"
	"os"

	"github.com/ttacon/libphonenumber"
)

// DefaultRegion is the country used to interpret national-format numbers.
func DefaultRegion() string {
	region := os.Getenv("PHONE_REGION")
	if region == "" {
		region = "IN"
	}
	return region
}

// Normalize parses a mobile number and returns its E.164 form so that
// national and international spellings of the same number key the same
// customer record.
func Normalize(mobile string) (string, error) {
	p, err := libphonenumber.Parse(mobile, DefaultRegion())
	if err != nil {
		return "", err
	}

	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}

	return libphonenumber.Format(p, libphonenumber.E164), nil
}
