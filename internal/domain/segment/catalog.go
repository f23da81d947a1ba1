// Package segment provides the audience segmentation engine: a typed field
// catalogue, a recursive AND/OR rule tree, pure tree editing operations, and
// an evaluator that matches rule trees against contact records.
package segment

// FieldType classifies a catalogue field for operator selection and
// value coercion.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeDate   FieldType = "date"
	TypeSelect FieldType = "select"
	TypeArray  FieldType = "array"
)

// SelectOption is one choice of a select-typed field.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldDefinition is a static catalogue entry describing one filterable
// contact attribute. Definitions are immutable and registered once at startup.
type FieldDefinition struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Type    FieldType      `json:"type"`
	Group   string         `json:"group"`
	Options []SelectOption `json:"options,omitempty"`
}

// Catalog holds the ordered set of field definitions. Field order is
// significant: the first field is the default for newly created conditions.
type Catalog struct {
	fields []FieldDefinition
	byKey  map[string]FieldDefinition
}

// NewCatalog creates a catalog from an ordered list of field definitions.
// Later duplicates of a key are ignored for lookup but kept in order.
func NewCatalog(fields []FieldDefinition) *Catalog {
	c := &Catalog{
		fields: make([]FieldDefinition, len(fields)),
		byKey:  make(map[string]FieldDefinition, len(fields)),
	}
	copy(c.fields, fields)
	for _, f := range fields {
		if _, ok := c.byKey[f.Key]; !ok {
			c.byKey[f.Key] = f
		}
	}
	return c
}

// Fields returns the field definitions in catalogue order.
func (c *Catalog) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(c.fields))
	copy(out, c.fields)
	return out
}

// Field returns the definition for key, or false when the key is unknown.
// Callers must degrade gracefully on unknown keys (a persisted tree may
// reference a since-removed field) rather than fail the whole tree.
func (c *Catalog) Field(key string) (FieldDefinition, bool) {
	f, ok := c.byKey[key]
	return f, ok
}

// FieldType resolves the declared type of key. Unknown fields fall back to
// the string type so their conditions keep a defined operator set.
func (c *Catalog) FieldType(key string) FieldType {
	if f, ok := c.byKey[key]; ok {
		return f.Type
	}
	return TypeString
}

// FirstField returns the first catalogue field, used as the default for new
// conditions. The boolean is false for an empty catalog.
func (c *Catalog) FirstField() (FieldDefinition, bool) {
	if len(c.fields) == 0 {
		return FieldDefinition{}, false
	}
	return c.fields[0], true
}

// DefaultCatalog returns the contact field catalogue used by the CRM console.
func DefaultCatalog() *Catalog {
	return NewCatalog([]FieldDefinition{
		{Key: "email", Label: "Email", Type: TypeString, Group: "Profile"},
		{Key: "first_name", Label: "First name", Type: TypeString, Group: "Profile"},
		{Key: "last_name", Label: "Last name", Type: TypeString, Group: "Profile"},
		{Key: "company", Label: "Company", Type: TypeString, Group: "Company"},
		{Key: "country", Label: "Country", Type: TypeSelect, Group: "Profile", Options: []SelectOption{
			{Value: "us", Label: "United States"},
			{Value: "gb", Label: "United Kingdom"},
			{Value: "de", Label: "Germany"},
			{Value: "fr", Label: "France"},
			{Value: "ua", Label: "Ukraine"},
			{Value: "other", Label: "Other"},
		}},
		{Key: "lifecycle_stage", Label: "Lifecycle stage", Type: TypeSelect, Group: "Engagement", Options: []SelectOption{
			{Value: "subscriber", Label: "Subscriber"},
			{Value: "lead", Label: "Lead"},
			{Value: "opportunity", Label: "Opportunity"},
			{Value: "customer", Label: "Customer"},
			{Value: "evangelist", Label: "Evangelist"},
		}},
		{Key: "tags", Label: "Tags", Type: TypeArray, Group: "Engagement"},
		{Key: "lifetime_value", Label: "Lifetime value", Type: TypeNumber, Group: "Commerce"},
		{Key: "total_orders", Label: "Total orders", Type: TypeNumber, Group: "Commerce"},
		{Key: "last_activity_at", Label: "Last activity", Type: TypeDate, Group: "Engagement"},
		{Key: "created_at", Label: "Created", Type: TypeDate, Group: "Profile"},
	})
}
