package notification

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/cloudcitycakeco/cakeorders/internal/config"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

// BuildFunc renders the subject and body for a matched transition.
// It must be deterministic and free of side effects.
type BuildFunc func(t order.Transition) (subject, body string, err error)

// Rule decides whether a transition deserves a notification on one channel
// and renders it. A Rule fires only on transitions into Trigger from a
// different status, optionally restricted to the statuses listed in From.
type Rule struct {
	Name    string
	Trigger order.Status
	Channel Channel
	From    []order.Status
	Build   BuildFunc
}

// Matches reports whether the rule applies to t. It performs no I/O.
func (r Rule) Matches(t order.Transition) bool {
	if t.IsNoop() || t.To != r.Trigger {
		return false
	}
	if len(r.From) > 0 && !slices.Contains(r.From, t.From) {
		return false
	}
	return true
}

// BuildMessage renders the intent for t. Callers must check Matches first.
func (r Rule) BuildMessage(t order.Transition) (Intent, error) {
	subject, body, err := r.Build(t)
	if err != nil {
		return Intent{}, fmt.Errorf("rule %q: %w", r.Name, err)
	}
	return Intent{
		Channel:   r.Channel,
		Recipient: Recipient(r.Channel, t.Order.Contact),
		Subject:   subject,
		Body:      body,
	}, nil
}

// overlaps reports whether r and o could both fire for the same transition.
func (r Rule) overlaps(o Rule) bool {
	if r.Trigger != o.Trigger {
		return false
	}
	if len(r.From) == 0 || len(o.From) == 0 {
		return true
	}
	for _, s := range r.From {
		if slices.Contains(o.From, s) {
			return true
		}
	}
	return false
}

// DuplicateRuleError is returned when two rules claim the same responsibility.
type DuplicateRuleError struct {
	Rule     string
	Existing string
	Channel  Channel
	Trigger  order.Status
}

func (e *DuplicateRuleError) Error() string {
	if e.Rule == e.Existing {
		return fmt.Sprintf("rule %q registered twice for channel %q", e.Rule, e.Channel)
	}
	return fmt.Sprintf("rules %q and %q both notify %q on %q", e.Existing, e.Rule, e.Channel, e.Trigger)
}

// RuleSet is the ordered, immutable collection of registered rules.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet validates rules and freezes them in registration order.
// The same rule name may be registered once per channel; two rules that
// could fire on the same channel for the same transition are rejected.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if !r.Channel.Valid() {
			return nil, fmt.Errorf("rule %q: unknown channel %q", r.Name, r.Channel)
		}
		if r.Trigger == "" {
			return nil, fmt.Errorf("rule %q: trigger status is required", r.Name)
		}
		if r.Build == nil {
			return nil, fmt.Errorf("rule %q: message builder is required", r.Name)
		}
		for _, prev := range rules[:i] {
			if prev.Channel != r.Channel {
				continue
			}
			if prev.Name == r.Name || prev.overlaps(r) {
				return nil, &DuplicateRuleError{
					Rule: r.Name, Existing: prev.Name, Channel: r.Channel, Trigger: r.Trigger,
				}
			}
		}
	}
	return &RuleSet{rules: slices.Clone(rules)}, nil
}

// Rules returns a copy of the registered rules.
func (s *RuleSet) Rules() []Rule { return slices.Clone(s.rules) }

// Len returns the number of registered rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// Match returns the rules matching t, in registration order.
func (s *RuleSet) Match(t order.Transition) []Rule {
	var matched []Rule
	for _, r := range s.rules {
		if r.Matches(t) {
			matched = append(matched, r)
		}
	}
	return matched
}

// TemplateData is the value rule templates are executed against.
type TemplateData struct {
	OrderID        int64
	UserID         string
	Description    string
	Status         string
	PreviousStatus string
	Email          string
	Phone          string
	ChangedAt      string
}

func newTemplateData(t order.Transition) TemplateData {
	return TemplateData{
		OrderID:        t.Order.ID,
		UserID:         t.Order.UserID,
		Description:    t.Order.Description,
		Status:         string(t.To),
		PreviousStatus: string(t.From),
		Email:          t.Order.Contact.Email,
		Phone:          t.Order.Contact.Phone,
		ChangedAt:      t.At.UTC().Format(time.RFC1123),
	}
}

const defaultEmailSubject = "Your cake order #{{.OrderID}} is now {{.Status}}"

// TemplateRule builds a Rule whose message comes from text/template sources.
// Templates are parsed here so a broken template fails at start-up.
func TemplateRule(name string, trigger order.Status, channel Channel, from []order.Status, subject, body string) (Rule, error) {
	if strings.TrimSpace(body) == "" {
		return Rule{}, fmt.Errorf("rule %q: body template is required", name)
	}
	if channel == ChannelEmail && subject == "" {
		subject = defaultEmailSubject
	}

	bodyTmpl, err := template.New(name + ".body").Option("missingkey=error").Parse(body)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: parsing body template: %w", name, err)
	}
	var subjectTmpl *template.Template
	if subject != "" {
		subjectTmpl, err = template.New(name + ".subject").Option("missingkey=error").Parse(subject)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %q: parsing subject template: %w", name, err)
		}
	}

	build := func(t order.Transition) (string, string, error) {
		data := newTemplateData(t)
		var subj string
		if subjectTmpl != nil {
			var sb bytes.Buffer
			if err := subjectTmpl.Execute(&sb, data); err != nil {
				return "", "", fmt.Errorf("rendering subject: %w", err)
			}
			subj = strings.TrimSpace(sb.String())
		}
		var bb bytes.Buffer
		if err := bodyTmpl.Execute(&bb, data); err != nil {
			return "", "", fmt.Errorf("rendering body: %w", err)
		}
		return subj, strings.TrimSpace(bb.String()), nil
	}

	return Rule{
		Name:    name,
		Trigger: trigger,
		Channel: channel,
		From:    from,
		Build:   build,
	}, nil
}

// RulesFromConfig builds the rule set described by cfg. Every status a rule
// refers to must be declared by the workflow.
func RulesFromConfig(cfg *config.NotificationConfig, wf *order.Workflow) (*RuleSet, error) {
	rules := make([]Rule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		trigger := order.ParseStatus(rc.Status)
		if !wf.Known(trigger) {
			return nil, fmt.Errorf("rule %q: unknown status %q", rc.Name, rc.Status)
		}
		var from []order.Status
		for _, f := range rc.From {
			s := order.ParseStatus(f)
			if !wf.Known(s) {
				return nil, fmt.Errorf("rule %q: unknown from status %q", rc.Name, f)
			}
			from = append(from, s)
		}
		channel := Channel(strings.ToLower(strings.TrimSpace(rc.Channel)))
		if !channel.Valid() {
			return nil, fmt.Errorf("rule %q: unknown channel %q", rc.Name, rc.Channel)
		}
		r, err := TemplateRule(rc.Name, trigger, channel, from, rc.Subject, rc.Body)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return NewRuleSet(rules...)
}
