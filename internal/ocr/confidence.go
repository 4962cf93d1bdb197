package ocr

import (
	"regexp"
)

var (
	reNutrientWord = regexp.MustCompile(`\b(carbohydrate|sugars?|fib(er|re)|protein|fat|salt)\b`)
	reGramQty      = regexp.MustCompile(`\b\d+(\.\d+)?\s?m?g\b`)
	reEnergy       = regexp.MustCompile(`\b\d+\s?(kcal|kj)\b|\bcalories\b`)
	reServing      = regexp.MustCompile(`serving|per 100\s?g|typically`)
)

// heuristicConfidence scores normalized text on how much it looks like a
// nutrition panel. Each signal adds a fixed amount on top of a base.
func heuristicConfidence(txt string) float32 {
	score := float32(0.2)
	if n := len(reNutrientWord.FindAllStringIndex(txt, -1)); n > 0 {
		score += 0.1
		if n >= 4 {
			score += 0.15
		}
	}
	if reGramQty.MatchString(txt) {
		score += 0.2
	}
	if reEnergy.MatchString(txt) {
		score += 0.15
	}
	if reServing.MatchString(txt) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weights tesseract's own confidence higher when present.
func blendConfidence(ocrConf, heurConf float32) float32 {
	var conf float32
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	} else {
		conf = heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
