package fluid

// ID identifies a fluid kind, e.g. "water" or "lava".
type ID string

// Variant pairs a fluid kind with opaque metadata. Two variants holding the
// same kind but different metadata are distinct resources; most gameplay
// checks only care about the kind and go through IsOf or SameFluid. The zero
// value is the blank variant meaning "no fluid".
type Variant struct {
	ID   ID     `json:"id"`
	Data string `json:"data,omitempty"`
}

// Blank is the distinguished empty variant.
var Blank = Variant{}

// Of builds a metadata-free variant of the given kind.
func Of(id ID) Variant {
	return Variant{ID: id}
}

// IsBlank reports whether the variant carries no fluid.
func (v Variant) IsBlank() bool {
	return v.ID == ""
}

// IsOf reports whether the variant holds the given fluid kind. Metadata is
// ignored.
func (v Variant) IsOf(id ID) bool {
	return v.ID == id
}

// SameFluid reports kind equality between two variants, ignoring metadata.
func (v Variant) SameFluid(other Variant) bool {
	return v.ID == other.ID
}

// Equal reports full equality, kind and metadata both.
func (v Variant) Equal(other Variant) bool {
	return v == other
}

func (v Variant) String() string {
	if v.IsBlank() {
		return "blank"
	}
	if v.Data == "" {
		return string(v.ID)
	}
	return string(v.ID) + "[" + v.Data + "]"
}
