package entity

// Technique is a named cost optimization rule offered by the backend.
type Technique struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// Label returns the icon and name for list displays.
func (t Technique) Label() string {
	if t.Icon == "" {
		return t.Name
	}
	return t.Icon + " " + t.Name
}
