package common

// WipeByteArray overwrites the buffer with zeros. Used to shorten the
// in-memory lifetime of passwords and raw secrets; nil-safe.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
