package avatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	// md5("alice@example.com")
	const hash = "c160f8cc69a4f0bf2b0362752353d060"

	tests := []struct {
		name  string
		email string
		opts  Options
		want  string
	}{
		{
			name:  "defaults",
			email: "alice@example.com",
			opts:  DefaultOptions,
			want:  "//www.gravatar.com/avatar/" + hash + "?s=200&r=pg&d=mm",
		},
		{
			name:  "hash ignores case and surrounding space",
			email: "  Alice@Example.COM ",
			opts:  DefaultOptions,
			want:  "//www.gravatar.com/avatar/" + hash + "?s=200&r=pg&d=mm",
		},
		{
			name:  "https",
			email: "alice@example.com",
			opts:  Options{Size: 80, Rating: "g", Default: "identicon", Protocol: "https"},
			want:  "https://www.gravatar.com/avatar/" + hash + "?s=80&r=g&d=identicon",
		},
		{
			name:  "no options",
			email: "alice@example.com",
			opts:  Options{},
			want:  "//www.gravatar.com/avatar/" + hash,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URL(tt.email, tt.opts))
		})
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	g := NewGenerator(DefaultOptions)
	assert.Equal(t, g.URL("bob@example.com"), g.URL("bob@example.com"))
	assert.NotEqual(t, g.URL("bob@example.com"), g.URL("carol@example.com"))
}
