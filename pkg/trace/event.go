package trace

import (
	"fmt"
	"strings"
	"time"
)

// Event is one decision taken during a graph run.
// CBOR encoding uses integer keys.
type Event struct {
	// Timestamp when the decision was taken.
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID identifies the run (UUID). All events of one invocation share it.
	RunID string `cbor:"2,keyasint"`

	// Kind classifies the decision.
	Kind Kind `cbor:"3,keyasint"`

	// Path is the absolute path of the node the decision is about.
	Path string `cbor:"4,keyasint,omitempty"`

	// Role is the classification result (Kind Classified only).
	Role string `cbor:"5,keyasint,omitempty"`

	// Label is the regulator label or device name involved.
	Label string `cbor:"6,keyasint,omitempty"`

	// Rule is the identifier of the rule that matched.
	Rule string `cbor:"7,keyasint,omitempty"`

	// Property is the property name involved (supply events).
	Property string `cbor:"8,keyasint,omitempty"`

	// Target is the path of a resolved node or the owner path.
	Target string `cbor:"9,keyasint,omitempty"`

	// Detail carries free-form context such as a failure reason or a statement.
	Detail string `cbor:"10,keyasint,omitempty"`
}

// Kind classifies a decision event.
type Kind uint8

const (
	// KindClassified records the role assigned to a node.
	KindClassified Kind = 0
	// KindSuppressed records a node skipped because it lies inside a regulator branch.
	KindSuppressed Kind = 1
	// KindOwner records the owning device chosen for an inline regulator.
	KindOwner Kind = 2
	// KindSupplyResolved records a supply property resolved to a regulator.
	KindSupplyResolved Kind = 3
	// KindSupplyUnresolved records a supply property that gave no result.
	KindSupplyUnresolved Kind = 4
	// KindDuplicate records a statement dropped by the dedup cache.
	KindDuplicate Kind = 5
	// KindCacheFull records the first statement written without being recorded.
	KindCacheFull Kind = 6
	// KindDeviceSkipped records a device already emitted under the same name.
	KindDeviceSkipped Kind = 7
)

var kindNames = [...]string{
	KindClassified:       "CLASSIFIED",
	KindSuppressed:       "SUPPRESSED",
	KindOwner:            "OWNER",
	KindSupplyResolved:   "SUPPLY_RESOLVED",
	KindSupplyUnresolved: "SUPPLY_UNRESOLVED",
	KindDuplicate:        "DUPLICATE",
	KindCacheFull:        "CACHE_FULL",
	KindDeviceSkipped:    "DEVICE_SKIPPED",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Kinds returns all known kinds in numeric order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}
