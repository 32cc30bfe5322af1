package profile

// Field names with a fixed column in the Detailed view, plus the extra
// property of the Default profile.
const (
	FieldName         = "Name"
	FieldSize         = "Size"
	FieldType         = "Type"
	FieldDateModified = "Date modified"
	FieldDateCreated  = "Date created"
)

// Category groups catalog fields for the profile editor.
type Category struct {
	Name   string
	Fields []string
}

// Catalog returns the fields a profile editor offers, by category. Profiles
// are not validated against it.
func Catalog() []Category {
	return []Category{
		{Name: "General", Fields: []string{
			FieldName, FieldSize, FieldType, FieldDateModified, FieldDateCreated,
			"Date accessed", "Attributes",
		}},
		{Name: "Images", Fields: []string{
			"Dimensions", "Date taken", "Camera model", "Resolution", "ISO speed", "F-stop",
		}},
		{Name: "Audio/Music", Fields: []string{
			"Title", "Artist", "Album", "Genre", "Year", "Length", "Bit rate",
		}},
		{Name: "Video", Fields: []string{
			"Frame width", "Frame height", "Frame rate", "Length", "Data rate", "Director",
		}},
	}
}

// InCatalog reports whether field appears anywhere in the catalog.
func InCatalog(field string) bool {
	for _, c := range Catalog() {
		for _, f := range c.Fields {
			if f == field {
				return true
			}
		}
	}
	return false
}
