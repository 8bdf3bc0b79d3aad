package finder

import (
	"sort"
	"strings"

	"sjsage522/menufinder/internal/crawler"
)

// DefaultImageKey is the images entry used when no selected protein has its own picture
const DefaultImageKey = "default"

// Result is a recipe that passed the filters, with its ranking data
type Result struct {
	Recipe      crawler.Recipe `json:"recipe"`
	Score       float64        `json:"score"`
	Highlighted []bool         `json:"highlighted"`
}

// AllIngredients returns the sorted unique ingredient names across recipes.
// The name of an ingredient line is its first word, so "กระเทียม 1 ช้อนโต๊ะ" yields "กระเทียม".
func AllIngredients(recipes []crawler.Recipe) []string {
	seen := make(map[string]struct{})
	for _, recipe := range recipes {
		for _, line := range recipe.Ingredients {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			seen[fields[0]] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MatchesCriteria reports whether a recipe passes the free-text query and the ingredient selection.
// A recipe passes the selection when any selected ingredient appears in its ingredient text.
func MatchesCriteria(recipe crawler.Recipe, selected []string, query string) bool {
	ingredientsText := joinedIngredients(recipe)

	if query != "" {
		q := strings.ToLower(query)
		if !strings.Contains(strings.ToLower(recipe.Name), q) && !strings.Contains(ingredientsText, q) {
			return false
		}
	}

	selected = normalizeSelection(selected)
	if len(selected) == 0 {
		return true
	}
	for _, ingredient := range selected {
		if strings.Contains(ingredientsText, ingredient) {
			return true
		}
	}
	return false
}

// MatchScore returns the share of selected ingredients found in the recipe, between 0 and 1
func MatchScore(recipe crawler.Recipe, selected []string) float64 {
	selected = normalizeSelection(selected)
	if len(selected) == 0 {
		return 0
	}

	ingredientsText := joinedIngredients(recipe)
	matches := 0
	for _, ingredient := range selected {
		if strings.Contains(ingredientsText, ingredient) {
			matches++
		}
	}
	return float64(matches) / float64(len(selected))
}

// Highlight marks the ingredient lines that contain any selected ingredient
func Highlight(recipe crawler.Recipe, selected []string) []bool {
	selected = normalizeSelection(selected)
	marks := make([]bool, len(recipe.Ingredients))
	for i, line := range recipe.Ingredients {
		lower := strings.ToLower(line)
		for _, ingredient := range selected {
			if strings.Contains(lower, ingredient) {
				marks[i] = true
				break
			}
		}
	}
	return marks
}

// Search filters recipes and, when ingredients are selected, ranks them by match score.
// Recipes with equal scores keep their collection order.
func Search(recipes []crawler.Recipe, selected []string, query string) []Result {
	query = strings.TrimSpace(query)

	results := make([]Result, 0, len(recipes))
	for _, recipe := range recipes {
		if !MatchesCriteria(recipe, selected, query) {
			continue
		}
		results = append(results, Result{
			Recipe:      recipe,
			Score:       MatchScore(recipe, selected),
			Highlighted: Highlight(recipe, selected),
		})
	}

	if len(normalizeSelection(selected)) > 0 {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
	return results
}

// RecipeImage picks the picture for a recipe given the selected ingredients.
// The first protein option that is selected wins; otherwise the default picture, then Image.
func RecipeImage(recipe crawler.Recipe, selected []string) string {
	chosen := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		chosen[s] = struct{}{}
	}

	for _, protein := range recipe.ProteinOptions {
		if _, ok := chosen[protein]; !ok {
			continue
		}
		if image, ok := recipe.Images[protein]; ok && image != "" {
			return image
		}
		break
	}

	if image, ok := recipe.Images[DefaultImageKey]; ok && image != "" {
		return image
	}
	return recipe.Image
}

func joinedIngredients(recipe crawler.Recipe) string {
	return strings.ToLower(strings.Join(recipe.Ingredients, " "))
}

// normalizeSelection lower-cases the selection and drops blanks and repeats
func normalizeSelection(selected []string) []string {
	if len(selected) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(selected))
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
