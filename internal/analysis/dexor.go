package analysis

// Dexor XORs buf with key repeated over its length and returns a new
// buffer. Applying it twice with the same key yields the input again.
func Dexor(buf, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = b ^ key[i%len(key)]
	}
	return out, nil
}
