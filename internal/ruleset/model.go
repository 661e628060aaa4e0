// Package ruleset consumes the engine's structured ruleset dump
// (nft -j -a list ruleset): it models the rule expression forest,
// reduces each rule to a one-line description, and provides the
// filter/search layer built on top of that reduction.
package ruleset

import (
	"encoding/json"
	"fmt"
	"strconv"

	"grimm.is/nftadm/internal/nft"
)

// Dump is the parsed ruleset listing. It is a transient read-only view
// produced per query and never mutated.
type Dump struct {
	Rules []Rule
}

// Rule is one live rule with its identity and expression list. Handle
// is the only identity that is stable across queries.
type Rule struct {
	Family string       `json:"family"`
	Table  string       `json:"table"`
	Chain  string       `json:"chain"`
	Handle uint64       `json:"handle"`
	Expr   []Expression `json:"expr"`
}

type rulesetDoc struct {
	Nftables []dumpEntry `json:"nftables"`
}

type dumpEntry struct {
	Rule *Rule `json:"rule"`
	// Tables, chains, sets and metainfo entries are present in the dump
	// but irrelevant here; they are skipped during decoding.
}

// ParseDump decodes the engine's JSON ruleset dump. Any shape mismatch
// is reported as nft.ErrParseFailure so callers can fall back to the
// plain-text listing.
func ParseDump(data []byte) (*Dump, error) {
	var doc rulesetDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", nft.ErrParseFailure, err)
	}

	d := &Dump{}
	for _, entry := range doc.Nftables {
		if entry.Rule != nil {
			d.Rules = append(d.Rules, *entry.Rule)
		}
	}
	return d, nil
}

// Expression kind tags as they appear in the dump.
const (
	KindMatch      = "match"
	KindRelational = "relational"
	KindCmp        = "cmp"
	KindPayload    = "payload"
	KindMeta       = "meta"
	KindCt         = "ct"
	KindAccept     = "accept"
	KindDrop       = "drop"
	KindReject     = "reject"
	KindLog        = "log"
	KindCounter    = "counter"
	KindJump       = "jump"
	KindReturn     = "return"
	KindXt         = "xt"
	KindSNAT       = "snat"
	KindDNAT       = "dnat"
	KindMasquerade = "masquerade"
	KindRedirect   = "redir"
	KindOpaque     = "opaque"
)

// knownKinds is the fixed decode probe order for node tags.
var knownKinds = []string{
	KindMatch, KindRelational, KindCmp, KindPayload, KindMeta, KindCt,
	KindAccept, KindDrop, KindReject, KindLog, KindCounter, KindJump,
	KindReturn, KindXt, KindSNAT, KindDNAT, KindMasquerade, KindRedirect,
}

// Expression is one node of a rule's expression list. The dump encodes
// each node as a single-key object tagged by its kind; unknown kinds
// decode to the opaque variant, which the formatter skips. New engine
// releases add kinds, so decoding must never fail on one.
type Expression struct {
	Kind    string
	Match   *MatchExpr
	Payload *PayloadStmt
	Meta    *MetaExpr
	Ct      *CtExpr
	Counter *CounterExpr
	Jump    *JumpExpr
	Xt      *XtExpr
}

// UnmarshalJSON dispatches on the node's single key.
func (e *Expression) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) == 0 {
		e.Kind = KindOpaque
		return nil
	}

	// Dump nodes are single-key objects. Probe known kinds in a fixed
	// order so malformed multi-key nodes still decode deterministically.
	var kind string
	var body json.RawMessage
	for _, k := range knownKinds {
		if v, ok := tagged[k]; ok {
			kind = k
			body = v
			break
		}
	}
	if kind == "" {
		e.Kind = KindOpaque
		return nil
	}

	switch kind {
	case KindMatch, KindRelational, KindCmp:
		e.Match = &MatchExpr{}
		if err := json.Unmarshal(body, e.Match); err != nil {
			e.Kind = KindOpaque
			e.Match = nil
			return nil
		}
	case KindPayload:
		e.Payload = &PayloadStmt{}
		if err := json.Unmarshal(body, e.Payload); err != nil {
			e.Kind = KindOpaque
			e.Payload = nil
			return nil
		}
	case KindMeta:
		e.Meta = &MetaExpr{}
		if err := json.Unmarshal(body, e.Meta); err != nil {
			e.Kind = KindOpaque
			e.Meta = nil
			return nil
		}
	case KindCt:
		e.Ct = &CtExpr{}
		if err := json.Unmarshal(body, e.Ct); err != nil {
			e.Kind = KindOpaque
			e.Ct = nil
			return nil
		}
	case KindCounter:
		e.Counter = &CounterExpr{}
		// Counters may appear as "counter": null in declaration form.
		if len(body) > 0 && string(body) != "null" {
			if err := json.Unmarshal(body, e.Counter); err != nil {
				e.Kind = KindOpaque
				e.Counter = nil
				return nil
			}
		}
	case KindJump:
		e.Jump = &JumpExpr{}
		if err := json.Unmarshal(body, e.Jump); err != nil {
			e.Kind = KindOpaque
			e.Jump = nil
			return nil
		}
	case KindXt:
		e.Xt = &XtExpr{}
		if err := json.Unmarshal(body, e.Xt); err != nil {
			e.Kind = KindOpaque
			e.Xt = nil
			return nil
		}
	case KindAccept, KindDrop, KindReject, KindLog, KindReturn,
		KindSNAT, KindDNAT, KindMasquerade, KindRedirect:
		// Verdict-like nodes carry no fields we consume.
	}

	e.Kind = kind
	return nil
}

// MatchExpr covers the match, relational and cmp node shapes: an
// operator over a left operand and a right value, optionally negated.
type MatchExpr struct {
	Op     string     `json:"op"`
	Left   Operand    `json:"left"`
	Right  RightValue `json:"right"`
	Negate bool       `json:"negate"`
}

// Operand is a node's left side, commonly a payload field reference.
type Operand struct {
	Payload *PayloadRef `json:"payload"`
	Meta    *MetaRef    `json:"meta"`
}

// PayloadRef references a protocol header field.
type PayloadRef struct {
	Protocol string `json:"protocol"`
	Field    string `json:"field"`
}

// MetaRef references a packet metadata key.
type MetaRef struct {
	Key string `json:"key"`
}

// PayloadStmt is the statement form of a payload node, carrying an
// inline value.
type PayloadStmt struct {
	Protocol string     `json:"protocol"`
	Field    string     `json:"field"`
	Value    RightValue `json:"value"`
}

// MetaExpr is a meta node.
type MetaExpr struct {
	Key    string     `json:"key"`
	Right  RightValue `json:"right"`
	Negate bool       `json:"negate"`
}

// CtExpr is a connection-tracking node.
type CtExpr struct {
	Direction string `json:"dir"`
	Key       string `json:"key"`
}

// CounterExpr carries packet and byte tallies.
type CounterExpr struct {
	Packets uint64 `json:"packets"`
	Bytes   uint64 `json:"bytes"`
}

// JumpExpr is a jump to another chain.
type JumpExpr struct {
	Target string `json:"target"`
}

// XtExpr is an iptables-translated extension target.
type XtExpr struct {
	Target string `json:"target"`
}

// RightValue is a node's right side: a raw scalar, a {val: X} wrapper,
// or a {prefix: {addr, len}} wrapper. It keeps the raw message and
// normalizes on demand.
type RightValue struct {
	raw json.RawMessage
}

// UnmarshalJSON stores the raw message for later normalization.
func (r *RightValue) UnmarshalJSON(data []byte) error {
	r.raw = append(r.raw[:0], data...)
	return nil
}

// IsZero reports whether no right value was present.
func (r RightValue) IsZero() bool {
	return len(r.raw) == 0 || string(r.raw) == "null"
}

type valWrapper struct {
	Val *json.RawMessage `json:"val"`
}

type prefixWrapper struct {
	Prefix *struct {
		Addr string `json:"addr"`
		Len  int    `json:"len"`
	} `json:"prefix"`
}

// Normalize reduces the right value to its display form: the scalar
// itself, the unwrapped val, or addr/len for prefixes. Unknown wrapper
// shapes render as their compact JSON.
func (r RightValue) Normalize() string {
	if r.IsZero() {
		return ""
	}

	var s string
	if err := json.Unmarshal(r.raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(r.raw, &n); err == nil {
		return n.String()
	}

	var vw valWrapper
	if err := json.Unmarshal(r.raw, &vw); err == nil && vw.Val != nil {
		return (RightValue{raw: *vw.Val}).Normalize()
	}
	var pw prefixWrapper
	if err := json.Unmarshal(r.raw, &pw); err == nil && pw.Prefix != nil {
		return fmt.Sprintf("%s/%d", pw.Prefix.Addr, pw.Prefix.Len)
	}

	return string(r.raw)
}

// Int extracts an integer scalar, unwrapping a {val: X} wrapper if
// present. Numeric strings count: the engine has emitted both forms.
func (r RightValue) Int() (int, bool) {
	if r.IsZero() {
		return 0, false
	}

	var n int
	if err := json.Unmarshal(r.raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(r.raw, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v, true
		}
		return 0, false
	}
	var vw valWrapper
	if err := json.Unmarshal(r.raw, &vw); err == nil && vw.Val != nil {
		return (RightValue{raw: *vw.Val}).Int()
	}
	return 0, false
}
