// Package citypages serves per-city landing page content for local search.
package citypages

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	DefaultState      = "NC"
	DefaultPopulation = 100000
)

// CityData is the content of one city landing page.
type CityData struct {
	CityName        string   `json:"city_name"`
	StateCode       string   `json:"state_code"`
	PageTitle       string   `json:"page_title"`
	MetaDescription string   `json:"meta_description"`
	HeroContent     string   `json:"hero_content"`
	LocalKeywords   []string `json:"local_keywords"`
	Population      int      `json:"population"`
	ZipCodes        []string `json:"zip_codes"`
	LocalHospitals  []string `json:"local_hospitals"`
}

var knownPopulations = map[string]int{
	"raleigh":       474069,
	"charlotte":     874579,
	"durham":        278993,
	"greensboro":    296710,
	"winston-salem": 249545,
	"asheville":     94589,
	"wilmington":    123744,
	"cary":          174721,
}

// Slug normalizes a city name for lookups: "Winston Salem" -> "winston-salem".
func Slug(city string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(city))), "-")
}

// DisplayName title-cases a slug or raw city name: "winston-salem" -> "Winston-Salem".
func DisplayName(city string) string {
	city = strings.TrimSpace(city)
	out := []rune(city)
	upper := true
	for i, r := range out {
		if upper && unicode.IsLetter(r) {
			out[i] = unicode.ToUpper(r)
		}
		upper = r == ' ' || r == '-'
	}
	return string(out)
}

// Fallback builds generic content for a city that has no stored page.
func Fallback(city, state, phone string) CityData {
	name := DisplayName(city)
	if state == "" {
		state = DefaultState
	}
	lower := strings.ToLower(name)
	pop, ok := knownPopulations[Slug(city)]
	if !ok {
		pop = DefaultPopulation
	}
	return CityData{
		CityName:  name,
		StateCode: state,
		PageTitle: fmt.Sprintf("Find Psychiatrist %s %s | Online Mental Health Care | Same-Day Appointments", name, state),
		MetaDescription: fmt.Sprintf("Book appointment with psychiatrist %s %s. Same-day telepsychiatry for ADHD treatment, "+
			"depression therapy, anxiety help. Licensed psychiatrists serving %s. Call %s.", name, state, name, phone),
		HeroContent: fmt.Sprintf("Professional telepsychiatry services for %s residents. Same-day online psychiatric care "+
			"from licensed North Carolina psychiatrists.", name),
		LocalKeywords: []string{
			"psychiatrist " + lower,
			lower + " mental health",
			"telepsychiatry " + lower,
			"online psychiatrist " + lower + " " + strings.ToLower(state),
		},
		Population:     pop,
		ZipCodes:       []string{},
		LocalHospitals: []string{},
	}
}
