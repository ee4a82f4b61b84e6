package user

// Summary is the part of an externally owned user that sale listings show.
type Summary struct {
	ID    string
	Name  string
	Email string
	Found bool
}

// Missing is the placeholder used when a referenced user does not resolve.
func Missing(id string) Summary {
	return Summary{ID: id}
}
