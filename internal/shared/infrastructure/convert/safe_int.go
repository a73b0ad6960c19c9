// Package convert provides checked integer conversions for config values
// handed to libraries with narrower types.
package convert

import (
	"fmt"
	"math"
)

// IntToUint32 converts v, rejecting negatives and values above MaxUint32.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32", v)
	}
	return uint32(v), nil
}

// AtLeastUint32 converts v after raising it to floor.
func AtLeastUint32(v, floor int) (uint32, error) {
	return IntToUint32(max(v, floor))
}
