package crawler

import (
	"regexp"
	"strings"

	"sjsage522/menufinder/helpers"
)

// Difficulty and time labels used when the page says nothing usable
const (
	DifficultyEasy    = "ง่าย"
	DifficultyMedium  = "กลาง"
	DifficultyHard    = "ยาก"
	NotSpecified      = "ไม่ระบุ"
	minutesSuffix     = " นาที"
	defaultRecipeName = "ไม่พบชื่อสูตร"
	stepsOnWebsite    = "วิธีทำสามารถดูได้จากเว็บไซต์"
)

// KapookUnits are the measuring units that mark an ingredient line on Kapook
var KapookUnits = []string{
	"กรัม", "กก.", "ช้อน", "ช้อนโต๊ะ", "ช้อนชา",
	"ถ้วย", "ฟอง", "ชต.", "ชช.", "มล.", "ลิตร",
}

// TrueIDUnits extend KapookUnits with the counting words TrueID authors use
var TrueIDUnits = append(append([]string{}, KapookUnits...),
	"ซม.", "เซ็นติเมตร", "ขีด", "ชิ้น", "อย่าง", "ลูก",
	"หลอด", "แท่ง", "ห่อ", "กำ", "มัด", "ก้อน", "ซอย", "/",
)

var cookingTimePattern = regexp.MustCompile(`(\p{Nd}+)\s*นาที|(\p{Nd}+)\s*min`)

// Match reports whether text looks like an ingredient line
func (r IngredientRule) Match(text string) bool {
	n := helpers.RuneLen(text)
	if n <= r.MinLen || (r.MaxLen > 0 && n >= r.MaxLen) {
		return false
	}
	if r.MaxSpaces > 0 && strings.Count(text, " ") >= r.MaxSpaces {
		return false
	}
	return containsAny(text, r.Units)
}

// Match reports whether text looks like a cooking step
func (r StepRule) Match(text string) bool {
	if helpers.RuneLen(text) <= r.MinLen {
		return false
	}
	if r.Pattern != nil && r.Pattern.MatchString(text) {
		return true
	}
	return containsAny(text, r.Keywords)
}

// Collect returns the texts accepted by the rule, deduplicated and capped at MaxSteps
func (r StepRule) Collect(texts []string) []string {
	var steps []string
	for _, text := range texts {
		if r.Match(text) {
			steps = append(steps, text)
		}
	}
	steps = Dedupe(steps)
	if r.MaxSteps > 0 && len(steps) > r.MaxSteps {
		steps = steps[:r.MaxSteps]
	}
	return steps
}

// Collect returns the texts accepted by the rule, deduplicated
func (r IngredientRule) Collect(texts []string) []string {
	var ingredients []string
	for _, text := range texts {
		if r.Match(text) {
			ingredients = append(ingredients, text)
		}
	}
	return Dedupe(ingredients)
}

// Dedupe removes repeated items keeping the first occurrence order
func Dedupe(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// DetectDifficulty guesses the difficulty label from the page text
func DetectDifficulty(pageText string) string {
	text := strings.ToLower(pageText)

	switch {
	case strings.Contains(text, "ง่าย") || strings.Contains(text, "easy"):
		return DifficultyEasy
	case strings.Contains(text, "กลาง") || strings.Contains(text, "medium"):
		return DifficultyMedium
	case strings.Contains(text, "ยาก") || strings.Contains(text, "hard"):
		return DifficultyHard
	}
	return NotSpecified
}

// DetectTime returns the first "<n> นาที" or "<n> min" mention as "<n> นาที"
func DetectTime(pageText string) string {
	match := cookingTimePattern.FindStringSubmatch(pageText)
	if match == nil {
		return NotSpecified
	}
	minutes := match[1]
	if minutes == "" {
		minutes = match[2]
	}
	return minutes + minutesSuffix
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
