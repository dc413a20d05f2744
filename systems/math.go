package systems

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clampMin keeps v at or above minVal.
func clampMin(v, minVal float32) float32 {
	if v < minVal {
		return minVal
	}
	return v
}
