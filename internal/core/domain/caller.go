package domain

// Caller identifies who invoked an operation.
type Caller struct {
	ID   string
	Name string

	// Roles are the caller's role names on the hosting platform.
	Roles []string

	// Administrator is set when the platform grants full administrative rights.
	Administrator bool

	// System marks internal callers such as the scheduler and the CLI.
	System bool
}

// SystemCaller returns the caller used for scheduled and local operations.
func SystemCaller(name string) Caller {
	return Caller{ID: "system", Name: name, System: true}
}

// HasAnyRole reports whether the caller holds one of the given roles.
func (c Caller) HasAnyRole(roles []string) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
