package session

// Notification is an identity-change event from the identity provider.
// It is a closed variant: Authenticated or Unauthenticated.
type Notification interface {
	isNotification()
}

// Authenticated reports an active provider session for an external identity.
type Authenticated struct {
	ExternalID  string
	Email       string
	DisplayName string
}

// Unauthenticated reports that the provider has no active session.
type Unauthenticated struct{}

func (Authenticated) isNotification()   {}
func (Unauthenticated) isNotification() {}
