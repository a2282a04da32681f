package matching

import (
	"sort"
	"strings"
	"unicode"
)

// SkillAliases collapses common spellings onto one canonical skill name.
var SkillAliases = map[string]string{
	"react.js":            "react",
	"reactjs":             "react",
	"react js":            "react",
	"node.js":             "node",
	"nodejs":              "node",
	"node js":             "node",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"next.js":             "nextjs",
	"angular.js":          "angular",
	"angularjs":           "angular",
	"express.js":          "express",
	"expressjs":           "express",
	"golang":              "go",
	"js":                  "javascript",
	"es6":                 "javascript",
	"ts":                  "typescript",
	"postgres":            "postgresql",
	"psql":                "postgresql",
	"mongo":               "mongodb",
	"k8s":                 "kubernetes",
	"html5":               "html",
	"css3":                "css",
	"py":                  "python",
	"python3":             "python",
	"ml":                  "machine learning",
	"amazon web services": "aws",
	"gcp":                 "google cloud",
	"tailwindcss":         "tailwind",
	"tailwind css":        "tailwind",
	"c sharp":             "c#",
	"dotnet":              "net",
	".net":                "net",
}

// NormalizeSkill lowercases, trims and collapses whitespace, then resolves aliases.
func NormalizeSkill(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	if canon, ok := SkillAliases[s]; ok {
		return canon
	}
	return s
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func skillSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		n := NormalizeSkill(s)
		if n == "" {
			continue
		}
		out[n] = struct{}{}
	}
	return out
}

func textSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		n := normalizeText(s)
		if n == "" {
			continue
		}
		out[n] = struct{}{}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "from": {}, "that": {}, "this": {},
	"are": {}, "was": {}, "have": {}, "has": {}, "you": {}, "your": {}, "our": {},
	"who": {}, "into": {}, "over": {}, "about": {}, "will": {}, "can": {}, "not": {},
	"but": {}, "all": {}, "any": {}, "been": {}, "also": {}, "more": {}, "than": {},
	"years": {}, "year": {}, "work": {}, "working": {}, "experience": {}, "love": {},
}

// keywordTokens splits free text into lowercase word tokens worth matching on.
func keywordTokens(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsNumber(r) || r == '#' || r == '+')
	})

	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func tokenSet(text string) map[string]struct{} {
	tokens := keywordTokens(text)
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		out[t] = struct{}{}
	}
	return out
}
