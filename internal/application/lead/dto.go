package lead

// CreateLeadInput is the payload for adding a lead.
// Pointers distinguish an absent field from an empty one.
type CreateLeadInput struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Source *string `json:"source"`
}

// UpdateLeadInput is the payload for changing a lead's status and notes
type UpdateLeadInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
