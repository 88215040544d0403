package event

// Type identifies the type of domain event
type Type string

const (
	TypeApplicationCreated      Type = "application.created"
	TypeApplicationTransitioned Type = "application.transitioned"
	TypeApplicationArchived     Type = "application.archived"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationCreated,
		TypeApplicationTransitioned,
		TypeApplicationArchived:
		return true
	default:
		return false
	}
}
