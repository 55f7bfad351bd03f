package state

// ItemType identifies an item kind.
type ItemType string

// ItemTypeBucket is the empty container item consumed and produced by fluid
// transfers.
const ItemTypeBucket ItemType = "bucket"

// Stack size limits.
const (
	DefaultMaxStack = 64
	BucketMaxStack  = 16
)

// ItemStack is a quantity of one item kind. A zero-quantity or untyped stack
// is empty; inventories never store empty stacks.
type ItemStack struct {
	Type     ItemType `json:"type"`
	Quantity int      `json:"quantity"`
}

// IsEmpty reports whether the stack holds nothing.
func (s ItemStack) IsEmpty() bool {
	return s.Type == "" || s.Quantity <= 0
}

// ItemDefinition describes the static properties of an item kind.
type ItemDefinition struct {
	Type        ItemType `json:"type"`
	DisplayName string   `json:"displayName"`
	MaxStack    int      `json:"maxStack"`
}

var itemDefinitions = map[ItemType]ItemDefinition{
	ItemTypeBucket: {Type: ItemTypeBucket, DisplayName: "Bucket", MaxStack: BucketMaxStack},
}

// RegisterItemDefinition adds or replaces the definition of an item kind.
// Catalogs register their container items here during indexing.
func RegisterItemDefinition(def ItemDefinition) {
	if def.Type == "" {
		return
	}
	if def.MaxStack <= 0 {
		def.MaxStack = DefaultMaxStack
	}
	itemDefinitions[def.Type] = def
}

// ItemDefinitionFor looks up the definition of an item kind.
func ItemDefinitionFor(itemType ItemType) (ItemDefinition, bool) {
	def, ok := itemDefinitions[itemType]
	return def, ok
}

// MaxStackFor returns the stack size limit for an item kind, defaulting for
// unregistered kinds.
func MaxStackFor(itemType ItemType) int {
	if def, ok := itemDefinitions[itemType]; ok {
		return def.MaxStack
	}
	return DefaultMaxStack
}
