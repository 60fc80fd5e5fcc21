package usecase

import "strings"

const (
	IntakeFormAnswer = "You can fill out our intake form at https://www.smartrunai.com/intake. " +
		"It takes a few minutes and helps our team understand your workflows so we can put together " +
		"a tailored automation strategy. Prefer to talk first? Click \"Book a Demo\" to schedule a free consultation."
	LocationAnswer = "Smart Run AI has offices in Toronto, Ontario, CA and New York, NY, US."
)

// FastRule answers a recognized question without calling the model. Match
// receives the lowercased text of the latest user message.
type FastRule struct {
	Name   string
	Match  func(lower string) bool
	Answer string
}

func containsAll(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// DefaultFastRules is evaluated in order; the first match wins.
func DefaultFastRules() []FastRule {
	return []FastRule{
		{Name: "intake_form", Match: containsAll("intake", "form"), Answer: IntakeFormAnswer},
		{Name: "location", Match: containsAny("location", "where are you", "where is your office"), Answer: LocationAnswer},
	}
}

// MatchFastRule returns the first rule that matches text.
func MatchFastRule(rules []FastRule, text string) (FastRule, bool) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.Match(lower) {
			return r, true
		}
	}
	return FastRule{}, false
}
