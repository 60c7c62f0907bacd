package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		opts    ParseOptions
		token   string
		args    []string
		ok      bool
	}{
		{"prefix", "!PING  extra   args", ParseOptions{Prefix: "!", CaseInsensitive: true}, "ping", []string{"extra", "args"}, true},
		{"keeps arg case", "!say Hello World", ParseOptions{Prefix: "!", CaseInsensitive: true}, "say", []string{"Hello", "World"}, true},
		{"case sensitive", "!PING", ParseOptions{Prefix: "!"}, "PING", []string{}, true},
		{"multi-char prefix", "k!help ping", ParseOptions{Prefix: "k!"}, "help", []string{"ping"}, true},
		{"no prefix", "ping", ParseOptions{Prefix: "!"}, "", nil, false},
		{"prefix only", "!", ParseOptions{Prefix: "!"}, "", nil, false},
		{"whitespace after prefix", "!  \t", ParseOptions{Prefix: "!"}, "", nil, false},
		{"mention", "<@99> ping", ParseOptions{Prefix: "!", SelfID: "99"}, "ping", []string{}, true},
		{"nick mention", "<@!99> ping x", ParseOptions{Prefix: "!", SelfID: "99"}, "ping", []string{"x"}, true},
		{"mention without self id", "<@99> ping", ParseOptions{Prefix: "!"}, "", nil, false},
		{"newline separated", "!ping\nnext", ParseOptions{Prefix: "!"}, "ping", []string{"next"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, args, ok := Parse(tt.content, tt.opts)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
			if tt.ok {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}
