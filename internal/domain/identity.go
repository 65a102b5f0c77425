package domain

// Identity es la identidad externa del caller, ya validada.
type Identity struct {
	Provider string
	Subject  string
}

// TokenIdentifier arma la clave "<provider>|<external-id>".
func TokenIdentifier(provider, externalID string) string {
	return provider + "|" + externalID
}

func (i Identity) TokenIdentifier() string {
	return TokenIdentifier(i.Provider, i.Subject)
}
