package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/InternLink/portal-service/internal/config"
)

// Chi-squared goodness of fit over 1.2M digit draws. A generator that maps
// raw bytes through modulo 10 without rejection favors digits 0-5 and lands
// in the hundreds here; a uniform one stays near the 9-degree-of-freedom
// mean of 9 and exceeds 60 with probability under 1e-9.
func TestGenerateCodeUniformity(t *testing.T) {
	svc := &OTPService{cfg: config.OTPConfig{CodeLength: 6, TTL: 5 * time.Minute}}

	const draws = 200000
	counts := [10]float64{}
	for i := 0; i < draws; i++ {
		code, err := svc.generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9')
			counts[c-'0']++
		}
	}

	expected := float64(draws*6) / 10
	chi2 := 0.0
	for _, n := range counts {
		d := n - expected
		chi2 += d * d / expected
	}
	require.Less(t, chi2, 60.0, "digit distribution is biased, chi2=%.1f counts=%v", chi2, counts)
}
