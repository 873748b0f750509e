package marker

// NextOccurrence computes the next position at which a repeating trigger
// fires, relative to currentValue. Defined for interval > 0 (callers
// validate); the result is always strictly greater than currentValue.
//
// If the first occurrence has not happened yet the answer is start itself.
// Otherwise it is the smallest start + k*interval strictly past currentValue.
func NextOccurrence(start, interval, currentValue int) int {
	if currentValue < start {
		return start
	}
	steps := (currentValue-start)/interval + 1
	return start + steps*interval
}

// OccurrencesThrough expands a repeating trigger into every occurrence in
// [start, limit], capped at maxCount to bound output for pathological
// small intervals over long projects. Defined for interval > 0.
func OccurrencesThrough(start, interval, limit, maxCount int) []int {
	if maxCount <= 0 || limit < start {
		return nil
	}
	occurrences := make([]int, 0, maxCount)
	for pos := start; pos <= limit && len(occurrences) < maxCount; pos += interval {
		occurrences = append(occurrences, pos)
	}
	return occurrences
}
