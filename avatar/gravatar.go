// Package avatar derives profile image URLs from email addresses using the
// gravatar convention. Computing a URL never touches the network; clients
// resolve it later.
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

const gravatarHost = "www.gravatar.com"

// Options are the query parameters appended to every URL.
type Options struct {
	Size    int    // s: pixel size of the square image
	Rating  string // r: highest content rating allowed (g, pg, r, x)
	Default string // d: fallback image style when the address has no gravatar
	// Protocol is "http", "https" or empty for a protocol-relative URL ("//host/...").
	Protocol string
}

// DefaultOptions is the set used for new accounts: 200px, rated pg, "mystery man" fallback.
var DefaultOptions = Options{Size: 200, Rating: "pg", Default: "mm"}

// Generator builds avatar URLs with a fixed set of options.
type Generator struct {
	opts Options
}

// NewGenerator returns a Generator using opts.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// URL returns the avatar URL for email.
func (g *Generator) URL(email string) string {
	return URL(email, g.opts)
}

// URL returns the gravatar URL for email. The hash is taken over the trimmed,
// lower-cased address; the query keeps the s, r, d order.
func URL(email string, opts Options) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	var b strings.Builder
	switch opts.Protocol {
	case "http", "https":
		b.WriteString(opts.Protocol)
		b.WriteString(":")
	}
	b.WriteString("//")
	b.WriteString(gravatarHost)
	b.WriteString("/avatar/")
	b.WriteString(hex.EncodeToString(sum[:]))

	var params []string
	if opts.Size > 0 {
		params = append(params, "s="+strconv.Itoa(opts.Size))
	}
	if opts.Rating != "" {
		params = append(params, "r="+url.QueryEscape(opts.Rating))
	}
	if opts.Default != "" {
		params = append(params, "d="+url.QueryEscape(opts.Default))
	}
	if len(params) > 0 {
		b.WriteString("?")
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String()
}
