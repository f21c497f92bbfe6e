package envelope

import (
	"strings"

	"github.com/alessio/shellescape"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b *commandBuilder) addRaw(args ...string) {
	*b = append(*b, args...)
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// ReplayCommand reconstructs a curl command line equivalent to a call. Headers appear in
// sorted order so the result depends only on the inputs. A text/plain payload is written as
// an ANSI-C quoted string so that control characters survive copy and paste.
func ReplayCommand(method, url string, headers map[string]string, payload []byte, hasPayload bool) string {
	var b commandBuilder
	b.addRaw("curl", "-v", "-k", "-X")
	b.add(strings.ToUpper(method))
	for _, name := range sortedKeys(headers) {
		b.addRaw("-H")
		b.add(name + ": " + headers[name])
	}
	if hasPayload {
		b.addRaw("-d")
		if isPlainText(headers) {
			b.addRaw(ansiQuote(string(payload)))
		} else {
			b.add(string(payload))
		}
	}
	b.add(url)
	return b.String()
}

func isPlainText(headers map[string]string) bool {
	for name, value := range headers {
		if strings.EqualFold(name, "Content-Type") {
			return strings.HasPrefix(strings.ToLower(strings.TrimSpace(value)), "text/plain")
		}
	}
	return false
}

var ansiEscapes = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func ansiQuote(s string) string {
	return "$'" + ansiEscapes.Replace(s) + "'"
}
