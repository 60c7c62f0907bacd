package command

import "strings"

// ParseOptions controls how a message is split into a command token and
// arguments.
type ParseOptions struct {
	Prefix          string
	SelfID          string // enables "<@id>" and "<@!id>" as prefixes when non-empty
	CaseInsensitive bool
}

// Parse returns the command token and arguments of content. ok is false
// when content carries no prefix or nothing follows it. Arguments keep their
// case; only the token is folded.
func Parse(content string, opts ParseOptions) (token string, args []string, ok bool) {
	rest, ok := stripPrefix(content, opts)
	if !ok {
		return "", nil, false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", nil, false
	}

	token = fields[0]
	if opts.CaseInsensitive {
		token = strings.ToLower(token)
	}
	return token, fields[1:], true
}

func stripPrefix(content string, opts ParseOptions) (string, bool) {
	if opts.Prefix != "" && strings.HasPrefix(content, opts.Prefix) {
		return content[len(opts.Prefix):], true
	}
	if opts.SelfID == "" {
		return "", false
	}
	for _, mention := range []string{"<@" + opts.SelfID + ">", "<@!" + opts.SelfID + ">"} {
		if strings.HasPrefix(content, mention) {
			return content[len(mention):], true
		}
	}
	return "", false
}
