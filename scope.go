package shockwave

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/remix-astronautics/shockwave/domain"
)

// Match types a Rule can be applied to.
const (
	MatchSite    = "site"    // launch site location or pad name
	MatchRocket  = "rocket"  // rocket name
	MatchMission = "mission" // mission or payload name
)

// Rule represents a single filtering rule in the sync scope.
// It contains a compiled regular expression and the field it is matched against.
type Rule struct {
	Pattern   *regexp.Regexp // Compiled regular expression pattern
	MatchType string         // Type of matching: "site", "rocket" or "mission"
}

// Scope holds the inclusion/exclusion rules that decide which fetched launches a sync pass
// merges. Exclusion rules win over inclusion rules; a launch that matches neither gets
// DefaultAllow. Scope is safe for concurrent use.
type Scope struct {
	mu           sync.RWMutex
	IncludeRules map[string]Rule // Map of inclusion rules, key format: "pattern|matchType"
	ExcludeRules map[string]Rule // Map of exclusion rules, key format: "pattern|matchType"
	DefaultAllow bool            // Default behavior for launches not matching any rule
}

// NewScope creates a new Scope with the specified default behavior.
func NewScope(defaultAllow bool) *Scope {
	return &Scope{
		IncludeRules: make(map[string]Rule),
		ExcludeRules: make(map[string]Rule),
		DefaultAllow: defaultAllow,
	}
}

func normalizeMatchType(matchType string) string {
	return strings.ToLower(strings.TrimSpace(matchType))
}

// trimRulePattern strips the leading "-" the CLI uses to mark exclusion rules.
func trimRulePattern(pattern string) string {
	return strings.TrimPrefix(pattern, "-")
}

func newRule(pattern, matchType string) (Rule, error) {
	matchType = normalizeMatchType(matchType)
	switch matchType {
	case MatchSite, MatchRocket, MatchMission:
	default:
		return Rule{}, fmt.Errorf("invalid match type: %s", matchType)
	}

	compiled, err := regexp.Compile(trimRulePattern(pattern))
	if err != nil {
		return Rule{}, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return Rule{Pattern: compiled, MatchType: matchType}, nil
}

func (r Rule) key() string {
	return fmt.Sprintf("%s|%s", r.Pattern.String(), r.MatchType)
}

// AddRule adds a rule to the scope
func (s *Scope) AddRule(pattern, matchType string, exclude bool) error {
	rule, err := newRule(pattern, matchType)
	if err != nil {
		return err
	}
	key := rule.key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if exclude {
		if _, exists := s.ExcludeRules[key]; exists {
			return fmt.Errorf("rule already exists in exclude list")
		}
		s.ExcludeRules[key] = rule
	} else {
		if _, exists := s.IncludeRules[key]; exists {
			return fmt.Errorf("rule already exists in include list")
		}
		s.IncludeRules[key] = rule
	}
	return nil
}

// RemoveRule removes a rule from the scope
func (s *Scope) RemoveRule(pattern, matchType string, exclude bool) error {
	key := fmt.Sprintf("%s|%s", trimRulePattern(pattern), normalizeMatchType(matchType))

	s.mu.Lock()
	defer s.mu.Unlock()
	if exclude {
		if _, exists := s.ExcludeRules[key]; !exists {
			return fmt.Errorf("rule not found in exclude list")
		}
		delete(s.ExcludeRules, key)
	} else {
		if _, exists := s.IncludeRules[key]; !exists {
			return fmt.Errorf("rule not found in include list")
		}
		delete(s.IncludeRules, key)
	}
	return nil
}

// ClearRules clears all inclusion and exclusion rules from the scope
func (s *Scope) ClearRules() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IncludeRules = make(map[string]Rule)
	s.ExcludeRules = make(map[string]Rule)
}

// MatchesString determines if a given string is in scope for matchType.
func (s *Scope) MatchesString(input string, matchType string) bool {
	matchType = normalizeMatchType(matchType)
	return s.matches(func(ruleType string) []string {
		if ruleType == matchType {
			return []string{input}
		}
		return nil
	})
}

// InScope reports whether a fetched launch should be merged.
func (s *Scope) InScope(launch *domain.SyncedLaunch) bool {
	return s.matches(func(matchType string) []string {
		switch matchType {
		case MatchSite:
			return []string{launch.Site.Location, launch.Site.LaunchPad}
		case MatchRocket:
			return []string{launch.Rocket.Name}
		case MatchMission:
			return []string{launch.MissionName, launch.PayloadName}
		}
		return nil
	})
}

// replace swaps in the rules and default of other.
func (s *Scope) replace(other *Scope) {
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IncludeRules = other.IncludeRules
	s.ExcludeRules = other.ExcludeRules
	s.DefaultAllow = other.DefaultAllow
}

func (s *Scope) matches(targets func(matchType string) []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Check exclusion rules first
	for _, rule := range s.ExcludeRules {
		for _, target := range targets(rule.MatchType) {
			if rule.Pattern.MatchString(target) {
				return false
			}
		}
	}

	for _, rule := range s.IncludeRules {
		for _, target := range targets(rule.MatchType) {
			if rule.Pattern.MatchString(target) {
				return true
			}
		}
	}
	return s.DefaultAllow
}

// AddScopeRule adds a rule to the live scope and persists it when the planner has a configuration.
func (planner *Planner) AddScopeRule(pattern, matchType string, exclude bool) error {
	if err := planner.Scope.AddRule(pattern, matchType, exclude); err != nil {
		return err
	}

	planner.mu.Lock()
	defer planner.mu.Unlock()
	if planner.Config == nil {
		return nil
	}
	if err := planner.Config.AddScopeRule(pattern, matchType, exclude); err != nil {
		planner.Scope.RemoveRule(pattern, matchType, exclude)
		return fmt.Errorf("persisting scope rule : %w", err)
	}
	return nil
}

// RemoveScopeRule removes a rule from the live scope and from the configuration.
func (planner *Planner) RemoveScopeRule(pattern, matchType string, exclude bool) error {
	if err := planner.Scope.RemoveRule(pattern, matchType, exclude); err != nil {
		return err
	}

	planner.mu.Lock()
	defer planner.mu.Unlock()
	if planner.Config == nil {
		return nil
	}
	if err := planner.Config.RemoveScopeRule(pattern, matchType, exclude); err != nil {
		planner.Scope.AddRule(pattern, matchType, exclude)
		return fmt.Errorf("persisting scope rule : %w", err)
	}
	return nil
}

// ClearScopeRules removes every rule from the configuration and the live scope.
func (planner *Planner) ClearScopeRules() error {
	planner.mu.Lock()
	defer planner.mu.Unlock()
	if planner.Config != nil {
		if err := planner.Config.ClearScopeRules(); err != nil {
			return fmt.Errorf("persisting scope rules : %w", err)
		}
	}
	planner.Scope.ClearRules()
	return nil
}
