package models

// Terminal is a merchant terminal (point-of-sale or server-side integration)
// allowed to propose purchases and settle them.
type Terminal struct {
	// ID is the unique identifier for the terminal (UUID format).
	ID string

	// Name is the merchant-facing label, e.g. "Blue Bottle - Register 2".
	Name string

	// SecretHash is the bcrypt hash of the terminal's shared secret.
	SecretHash string

	// CreatedAt is the Unix timestamp when the terminal was registered.
	CreatedAt int64
}
