package models

// CategoryID is the stable identifier the price service expects for a property category.
type CategoryID string

const (
	CategoryApartment CategoryID = "Apartment"
	CategoryVilla     CategoryID = "Villa"
	CategoryLand      CategoryID = "Land"
)

// HasDetails reports whether the category collects the optional details step.
func (c CategoryID) HasDetails() bool {
	return c == CategoryApartment || c == CategoryVilla
}

// Category pairs a stable id with its localized label.
type Category struct {
	ID    CategoryID `yaml:"id"`
	Label string     `yaml:"label"`
}

// Option is a generic catalog entry (city or district).
type Option struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// Details holds category-specific attributes. Implementations are value types
// so a Filter copy never shares them.
type Details interface {
	Category() CategoryID
	Empty() bool
}

// ApartmentDetails are the attributes recognized for CategoryApartment.
// Empty strings mean "not given".
type ApartmentDetails struct {
	Floor          string
	TotalFloors    string
	ProductionYear string
	Rooms          string
	Elevator       bool
	Parking        bool
	Storeroom      bool
}

func (ApartmentDetails) Category() CategoryID { return CategoryApartment }

func (d ApartmentDetails) Empty() bool { return d == ApartmentDetails{} }

// VillaDetails are the attributes recognized for CategoryVilla.
type VillaDetails struct {
	ProductionYear string
	Rooms          string
	Balcony        bool
	Parking        bool
	Storeroom      bool
}

func (VillaDetails) Category() CategoryID { return CategoryVilla }

func (d VillaDetails) Empty() bool { return d == VillaDetails{} }

// Filter accumulates the answers of one conversation.
type Filter struct {
	Category Category
	City     Option
	District Option
	Days     int
	Details  Details // nil until the details step is answered
}

// Clear resets every field, details included.
func (f *Filter) Clear() {
	*f = Filter{}
}

// Complete reports whether the filter carries everything a lookup needs.
func (f Filter) Complete() bool {
	return f.Category.ID != "" && f.City.ID != "" && f.District.ID != "" && f.Days > 0
}

// Format tells the channel how to render a prompt's text.
type Format int

const (
	FormatPlain Format = iota
	// FormatMarkdownV2 text is already escaped and is sent verbatim.
	FormatMarkdownV2
)

// Prompt is one outbound message with optional reply options laid out in rows.
type Prompt struct {
	Text     string
	Keyboard [][]string
	Format   Format
}
