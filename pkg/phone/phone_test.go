package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEquivalentSpellings(t *testing.T) {
	spellings := []string{
		"9876543210",
		"98765 43210",
		"+919876543210",
		"+91 98765 43210",
	}

	for _, s := range spellings {
		got, err := Normalize(s)
		require.NoError(t, err, "input %q", s)
		assert.Equal(t, "+919876543210", got, "input %q", s)
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	for _, s := range []string{"12", "not-a-number", ""} {
		_, err := Normalize(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestNormalizeHonorsRegionEnv(t *testing.T) {
	t.Setenv("PHONE_REGION", "US")

	got, err := Normalize("(212) 555-0123")
	require.NoError(t, err)
	assert.Equal(t, "+12125550123", got)
}
