package dot

// sanitizeTable maps bytes 32..127 to identifier characters.
// A double quote becomes a single quote. Comma, hyphen, at sign and DEL
// become '_'.
const sanitizeTable = " !'#$%&'()*+__./" +
	"0123456789:;<=>?" +
	"_ABCDEFGHIJKLMNO" +
	"PQRSTUVWXYZ[\\]^_" +
	"`abcdefghijklmno" +
	"pqrstuvwxyz{|}~_"

// Sanitize maps s to a cluster-safe identifier of the same byte length.
// Bytes outside the printable range become '_'.
func Sanitize(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 32 || c > 127 {
			out[i] = '_'
			continue
		}
		out[i] = sanitizeTable[c-32]
	}
	return string(out)
}
