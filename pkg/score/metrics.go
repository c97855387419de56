package score

// Counts is the confusion summary for one positive class.
type Counts struct {
	// Correct is the number of positions where test and gold are both positive.
	Correct int `json:"correct" yaml:"correct"`
	// System is the number of positions the test predicted positive.
	System int `json:"system" yaml:"system"`
	// Gold is the number of positions gold marks positive.
	Gold int `json:"gold" yaml:"gold"`
}

// Add records one aligned observation.
func (c *Counts) Add(test, gold bool) {
	if test {
		c.System++
	}
	if gold {
		c.Gold++
	}
	if test && gold {
		c.Correct++
	}
}

// Precision is correct/system, or 0 when nothing was predicted.
func (c Counts) Precision() float64 {
	return CalculatePrecision(c.Correct, c.System)
}

// Recall is correct/gold, or 0 when gold has no positives.
func (c Counts) Recall() float64 {
	return CalculateRecall(c.Correct, c.Gold)
}

// F1 is the harmonic mean of precision and recall.
func (c Counts) F1() float64 {
	return CalculateF1(c.Precision(), c.Recall())
}

func CalculatePrecision(correct, system int) float64 {
	if system == 0 {
		return 0
	}
	return float64(correct) / float64(system)
}

func CalculateRecall(correct, gold int) float64 {
	if gold == 0 {
		return 0
	}
	return float64(correct) / float64(gold)
}

func CalculateF1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * (precision * recall) / (precision + recall)
}
