package engine

import (
	"fmt"
	"strconv"
	"strings"

	"mork-fetch/internal/models"
)

// ValidationError reports a bad field on a mutating call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RuleFields carries the optional fields of a SetRule upsert. Nil
// means "leave unchanged".
type RuleFields struct {
	TP    *int
	SL    *int
	Trail *int
	Size  *int
}

// ParseRuleFields converts raw string values (as received from a
// command) into RuleFields. Every provided value must coerce to an
// integer.
func ParseRuleFields(raw map[string]string) (RuleFields, error) {
	var f RuleFields
	for key, val := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return RuleFields{}, &ValidationError{Field: key, Reason: fmt.Sprintf("%q is not an integer", val)}
		}
		v := n
		switch key {
		case "tp":
			f.TP = &v
		case "sl":
			f.SL = &v
		case "trail":
			f.Trail = &v
		case "size":
			f.Size = &v
		default:
			return RuleFields{}, &ValidationError{Field: key, Reason: "unknown field"}
		}
	}
	return f, nil
}

// SetRule upserts a rule by case-insensitive mint match and persists.
// Only provided fields are updated. Ref and peak are left for the
// evaluation loop to initialize on the first observed price.
func (e *Engine) SetRule(mint string, fields RuleFields) (*models.Rule, error) {
	mint = strings.TrimSpace(mint)
	if mint == "" {
		return nil, &ValidationError{Field: "mint", Reason: "must be non-empty"}
	}

	e.mu.Lock()
	rule := e.findRuleLocked(mint)
	if rule == nil {
		rule = &models.Rule{Mint: mint}
		e.rules = append(e.rules, rule)
	}
	if fields.TP != nil {
		rule.TP = fields.TP
	}
	if fields.SL != nil {
		rule.SL = fields.SL
	}
	if fields.Trail != nil {
		rule.Trail = fields.Trail
	}
	if fields.Size != nil {
		rule.Size = fields.Size
	}
	snapshot := rule.Clone()
	e.mu.Unlock()

	e.saveState()
	e.logEvent("[cfg] rule %s tp=%s sl=%s trail=%s", shortMint(mint),
		fmtOptInt(snapshot.TP), fmtOptInt(snapshot.SL), fmtOptInt(snapshot.Trail))
	return snapshot, nil
}

// RemoveRule removes the rule matching mint case-insensitively.
// Returns the number removed (0 or 1); persists only when something
// was removed.
func (e *Engine) RemoveRule(mint string) int {
	key := strings.ToLower(strings.TrimSpace(mint))

	e.mu.Lock()
	removed := 0
	kept := e.rules[:0]
	for _, r := range e.rules {
		if strings.ToLower(r.Mint) == key {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	e.rules = kept
	e.mu.Unlock()

	if removed > 0 {
		e.saveState()
		e.logEvent("[cfg] rule %s removed", shortMint(mint))
	}
	return removed
}

// Rules returns a snapshot copy of the rule list in insertion order.
func (e *Engine) Rules() []*models.Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*models.Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Clone()
	}
	return out
}

// RuleInfo formats one rule for display.
func (e *Engine) RuleInfo(mint string) (string, bool) {
	e.mu.Lock()
	r := e.findRuleLocked(mint)
	if r == nil {
		e.mu.Unlock()
		return "", false
	}
	r = r.Clone()
	e.mu.Unlock()

	return fmt.Sprintf("%s tp=%s sl=%s trail=%s ref=%.6f peak=%.6f",
		r.Mint, fmtOptInt(r.TP), fmtOptInt(r.SL), fmtOptInt(r.Trail), r.Ref, r.Peak), true
}

// mergeRuleRuntime writes ref/peak back to the canonical rule without
// going through the validating setter. Used only by the evaluation
// loop.
func (e *Engine) mergeRuleRuntime(mint string, ref, peak float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r := e.findRuleLocked(mint); r != nil {
		r.Ref = ref
		r.Peak = peak
	}
}

// findRuleLocked matches a rule by case-insensitive mint. Caller holds
// the engine lock.
func (e *Engine) findRuleLocked(mint string) *models.Rule {
	key := strings.ToLower(strings.TrimSpace(mint))
	for _, r := range e.rules {
		if strings.ToLower(r.Mint) == key {
			return r
		}
	}
	return nil
}

func fmtOptInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}
