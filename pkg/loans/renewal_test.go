package loans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposedRenewalDate(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 22, 0, 0, 0, 0, time.UTC), ProposedRenewalDate(day))
}

func TestValidateRenewalDate(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ValidateRenewalDate(day, day))
	require.NoError(t, ValidateRenewalDate(day.AddDate(0, 0, RenewalWindowDays), day))

	err := ValidateRenewalDate(day.AddDate(0, 0, -1), day)
	require.Error(t, err)
	assert.Equal(t, "Invalid date - renewal in past", err.Error())

	err = ValidateRenewalDate(day.AddDate(0, 0, RenewalWindowDays+1), day)
	require.Error(t, err)
	assert.Equal(t, "Invalid date - renewal more than 4 weeks ahead", err.Error())
}
