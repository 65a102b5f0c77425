package domain

import "errors"

var (
	// ErrUserNotFound se devuelve cuando no hay usuario para el identificador.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists señala un token identifier ya registrado.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidRole señala un rol fuera de admin/member.
	ErrInvalidRole = errors.New("invalid role")
	// ErrDuplicateOrg señala una organizacion repetida en una lista de membresias.
	ErrDuplicateOrg = errors.New("duplicate org id")
)
