// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM. Both ends
// map to ±32767 so the conversion stays symmetric.
func Float32ToInt16(x float32) int16 {
	x = min(max(x, -1), 1)
	return int16(x * 32767)
}
