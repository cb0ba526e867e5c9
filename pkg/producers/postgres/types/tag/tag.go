package tag

import "strings"

type Tag struct {
	Name            string
	Skip            bool
	Unique          bool
	UniqueComposite bool
	Nullable        bool
	Indexed         bool
	PrimaryKey      bool
	OnDelete        string
	OnUpdate        string
	Default         string
	Check           string
	Generated       string
	GeneratedStored string
	Type            string
	OtherOptions    []string
}

func (tag *Tag) flag(option string) *bool {
	switch strings.ToLower(option) {
	case "unique":
		return &tag.Unique
	case "uniquecomposite":
		return &tag.UniqueComposite
	case "nullable":
		return &tag.Nullable
	case "indexed":
		return &tag.Indexed
	case "primarykey", "primary_key":
		return &tag.PrimaryKey
	}
	return nil
}

func (tag *Tag) setting(key string) *string {
	switch strings.ToLower(key) {
	case "default":
		return &tag.Default
	case "check":
		return &tag.Check
	case "ondelete":
		return &tag.OnDelete
	case "onupdate":
		return &tag.OnUpdate
	case "generated":
		return &tag.Generated
	case "generatedstored":
		return &tag.GeneratedStored
	case "type":
		return &tag.Type
	}
	return nil
}

// splitOptions splits on commas that are outside parentheses and quotes. SQL string literals escape a quote by
// doubling it, which the scan handles by toggling twice.
func splitOptions(s string) []string {
	var (
		parts      []string
		depth      int
		quote      byte
		partStart  int
		appendPart = func(end int) {
			if part := strings.TrimSpace(s[partStart:end]); part != "" {
				parts = append(parts, part)
			}
			partStart = end + 1
		}
	)

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case c == ',' && depth == 0:
			appendPart(i)
		}
	}
	appendPart(len(s))

	return parts
}

// New parses a `postgres` struct tag, e.g. "price,type:numeric(10, 2),check:(price > 0),unique". Expressions in
// option values may contain commas inside parentheses or quotes.
func New(tagString string) *Tag {
	elements := splitOptions(strings.TrimSpace(tagString))
	if len(elements) == 0 {
		return nil
	}

	tag := &Tag{}
	if len(elements) == 1 && elements[0] == "-" {
		tag.Skip = true
		return tag
	}

	tag.Name = elements[0]

	for _, option := range elements[1:] {
		if flag := tag.flag(option); flag != nil {
			*flag = true
			continue
		}

		if key, value, ok := strings.Cut(option, ":"); ok {
			if setting := tag.setting(key); setting != nil {
				*setting = value
				continue
			}
		}

		tag.OtherOptions = append(tag.OtherOptions, option)
	}

	return tag
}
