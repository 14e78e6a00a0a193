package driven

// Codec seals values into self-contained ciphertext tokens and opens them again.
// Decrypt must fail, never return a wrong value, when the token was altered.
type Codec interface {
	Encrypt(v any) (string, error)
	Decrypt(token string, v any) error
}
