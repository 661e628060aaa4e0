package ruleset

import (
	"fmt"
	"strings"
)

// Display sentinels.
const (
	EmptyRule   = "(empty rule)"
	ComplexRule = "(complex rule)"
)

// Verdict labels. Drop and reject intentionally collapse to the same
// deny label; the distinction is not surfaced downstream.
const (
	labelAllow = "allow"
	labelDeny  = "deny"
)

// FormattedRule is the reduction of one rule's expression list: the
// port descriptor (if any), the remaining qualifiers in encounter
// order, and the verdict label.
type FormattedRule struct {
	Port       string
	Qualifiers []string
	Action     string
}

// HasPort reports whether the rule matched on a port field.
func (f FormattedRule) HasPort() bool {
	return f.Port != ""
}

// String assembles the single display line: port first, then the other
// qualifiers in encounter order, then the action.
func (f FormattedRule) String() string {
	var parts []string
	if f.Port != "" {
		parts = append(parts, f.Port)
	}
	if len(f.Qualifiers) > 0 {
		parts = append(parts, strings.Join(f.Qualifiers, " "))
	}
	if f.Action != "" {
		parts = append(parts, f.Action)
	}
	if len(parts) == 0 {
		return ComplexRule
	}
	return strings.Join(parts, " ")
}

// Format reduces an expression list to its one-line description.
// The reduction is a single left-to-right pass and is deterministic:
// identical trees always format identically.
func Format(exprs []Expression) string {
	if len(exprs) == 0 {
		return EmptyRule
	}
	return Reduce(exprs).String()
}

// Reduce walks the expression list and fills the three display slots.
// The first port-matching node wins the port slot; later ones are kept
// out so a rule with both dport and sport reads stably. Unrecognized
// node kinds are skipped, never an error.
func Reduce(exprs []Expression) FormattedRule {
	var f FormattedRule

	for _, e := range exprs {
		switch e.Kind {
		case KindMatch, KindRelational, KindCmp:
			reduceMatch(&f, e.Match)
		case KindPayload:
			reducePayload(&f, e.Payload)
		case KindMeta:
			reduceMeta(&f, e.Meta)
		case KindCt:
			reduceCt(&f, e.Ct)
		case KindAccept:
			f.Action = labelAllow
		case KindDrop, KindReject:
			f.Action = labelDeny
		case KindLog:
			f.Qualifiers = append(f.Qualifiers, "log")
		case KindCounter:
			c := e.Counter
			if c == nil {
				c = &CounterExpr{}
			}
			f.Qualifiers = append(f.Qualifiers,
				fmt.Sprintf("counter %d packets %d bytes", c.Packets, c.Bytes))
		case KindJump:
			if e.Jump != nil && e.Jump.Target != "" {
				f.Qualifiers = append(f.Qualifiers, "jump "+e.Jump.Target)
			}
		case KindReturn:
			f.Qualifiers = append(f.Qualifiers, "return")
		case KindXt:
			if e.Xt != nil && e.Xt.Target != "" {
				f.Qualifiers = append(f.Qualifiers, "["+e.Xt.Target+"]")
			}
		case KindSNAT:
			f.Action = "snat"
		case KindDNAT:
			f.Action = "dnat"
		case KindMasquerade:
			f.Action = "masquerade"
		case KindRedirect:
			f.Action = "redirect"
		}
	}
	return f
}

func reduceMatch(f *FormattedRule, m *MatchExpr) {
	if m == nil {
		return
	}

	neg := ""
	if m.Negate {
		neg = "!"
	}
	right := m.Right.Normalize()

	if ref := m.Left.Payload; ref != nil {
		if isPortField(ref.Field) {
			setPort(f, neg+"port "+right)
			return
		}
		if ref.Protocol == "ip" && ref.Field == "daddr" {
			f.Qualifiers = append(f.Qualifiers, neg+"ip daddr "+right)
			return
		}
		if ref.Protocol != "" && ref.Field != "" {
			f.Qualifiers = append(f.Qualifiers, neg+ref.Protocol+" "+ref.Field+" "+right)
			return
		}
		if ref.Field != "" && right != "" {
			f.Qualifiers = append(f.Qualifiers, neg+ref.Field+" "+right)
			return
		}
	}

	if ref := m.Left.Meta; ref != nil && ref.Key != "" {
		if right != "" {
			f.Qualifiers = append(f.Qualifiers, neg+ref.Key+" "+right)
		} else {
			f.Qualifiers = append(f.Qualifiers, neg+ref.Key)
		}
		return
	}

	if right != "" {
		f.Qualifiers = append(f.Qualifiers, neg+m.Op+" "+right)
	}
}

func reducePayload(f *FormattedRule, p *PayloadStmt) {
	if p == nil {
		return
	}
	value := p.Value.Normalize()
	if isPortField(p.Field) {
		setPort(f, "port "+value)
		return
	}
	if p.Protocol != "" && p.Field != "" {
		f.Qualifiers = append(f.Qualifiers, p.Protocol+" "+p.Field+" "+value)
	}
}

func reduceMeta(f *FormattedRule, m *MetaExpr) {
	if m == nil || m.Key == "" {
		return
	}
	neg := ""
	if m.Negate {
		neg = "!"
	}
	if right := m.Right.Normalize(); right != "" {
		f.Qualifiers = append(f.Qualifiers, neg+"meta "+m.Key+" "+right)
		return
	}
	f.Qualifiers = append(f.Qualifiers, neg+"meta "+m.Key)
}

func reduceCt(f *FormattedRule, ct *CtExpr) {
	if ct == nil || ct.Key == "" {
		return
	}
	if ct.Direction != "" {
		f.Qualifiers = append(f.Qualifiers, "ct "+ct.Direction+" "+ct.Key)
		return
	}
	f.Qualifiers = append(f.Qualifiers, "ct "+ct.Key)
}

// setPort fills the port slot first-match-wins.
func setPort(f *FormattedRule, descriptor string) {
	if f.Port == "" {
		f.Port = descriptor
	}
}

func isPortField(field string) bool {
	return field == "dport" || field == "sport"
}
