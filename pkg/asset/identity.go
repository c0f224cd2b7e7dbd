package asset

import "regexp"

// Identity grammar: a kuid tag anchored at line start in the marker file,
// e.g. `kuid <kuid2:12345:678:1>`. Case-insensitive on the keyword.
var (
	kuidPattern     = regexp.MustCompile(`(?im)^kuid\s+<(kuid2?:\d+:\d+(?::\d+)?)>`)
	usernamePattern = regexp.MustCompile(`(?im)^username\s+"([^"]*)"`)
)

// parseMarker extracts an Asset from marker-file text, reporting whether the
// identity tag was present.
func parseMarker(data []byte, dir string) (Asset, bool) {
	m := kuidPattern.FindSubmatch(data)
	if m == nil {
		return Asset{}, false
	}
	a := Asset{KUID: string(m[1]), Root: dir}
	if u := usernamePattern.FindSubmatch(data); u != nil {
		a.Username = string(u[1])
	}
	return a, true
}

// ReplaceIdentity rewrites the first identity tag in marker-file text with
// the given literal tag. Applying it twice yields the same result as once:
// the replacement tag itself matches the identity grammar.
func ReplaceIdentity(data []byte, tag string) []byte {
	loc := kuidPattern.FindIndex(data)
	if loc == nil {
		return data
	}
	out := make([]byte, 0, len(data)-(loc[1]-loc[0])+len(tag))
	out = append(out, data[:loc[0]]...)
	out = append(out, tag...)
	out = append(out, data[loc[1]:]...)
	return out
}
