package retry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindIsValid(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			assert.True(t, k.IsValid())
		})
	}

	t.Run("rejects unknown kinds", func(t *testing.T) {
		assert.False(t, Kind("").IsValid())
		assert.False(t, Kind("bogus").IsValid())
		assert.False(t, Kind("Exponential").IsValid())
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "exponential_full_jitter", KindExponentialFullJitter.String())
	assert.Equal(t, "none", KindNoRetry.String())
}

func TestKindsIsACopy(t *testing.T) {
	ks := Kinds()
	assert.Len(t, ks, 8)

	ks[0] = Kind("mutated")
	assert.Equal(t, KindConstant, Kinds()[0])
}
