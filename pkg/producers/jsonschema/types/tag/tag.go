package tag

import (
	"fmt"
	"strconv"
	"strings"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

type Tag struct {
	Name         string
	Skip         bool
	Optional     bool
	MinLength    int
	MaxLength    int
	Minimum      float64
	Maximum      float64
	Format       string
	Pattern      string
	Description  string
	OtherOptions []string
}

func parseInt(key string, value string) (int, error) {
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, motmedelErrors.NewWithTrace(fmt.Errorf("strconv atoi (%s): %w", key, err), value)
	}
	return i, nil
}

func parseFloat(key string, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, motmedelErrors.NewWithTrace(fmt.Errorf("strconv parse float (%s): %w", key, err), value)
	}
	return f, nil
}

// New parses a `jsonschema` struct tag: a name followed by options, e.g. "count,optional,minimum:1". Option keys
// are case-insensitive; option values are kept as written. A pattern option, whose value may contain commas, must
// come last.
func New(tagString string) (*Tag, error) {
	trimmedTagString := strings.TrimSpace(tagString)
	if trimmedTagString == "" {
		return nil, nil
	}

	var tag Tag

	if trimmedTagString == "-" {
		tag.Skip = true
		return &tag, nil
	}

	name, options, _ := strings.Cut(trimmedTagString, ",")
	tag.Name = strings.TrimSpace(name)

	for options != "" {
		var option string
		if key, value, ok := strings.Cut(options, ":"); ok && strings.EqualFold(strings.TrimSpace(key), "pattern") {
			tag.Pattern = strings.TrimSpace(value)
			break
		}
		option, options, _ = strings.Cut(options, ",")
		option = strings.TrimSpace(option)

		if strings.EqualFold(option, "optional") {
			tag.Optional = true
			continue
		}

		key, value, ok := strings.Cut(option, ":")
		if !ok {
			tag.OtherOptions = append(tag.OtherOptions, option)
			continue
		}

		var err error
		switch strings.ToLower(key) {
		case "format":
			tag.Format = value
		case "description":
			tag.Description = value
		case "minlength":
			tag.MinLength, err = parseInt("minlength", value)
		case "maxlength":
			tag.MaxLength, err = parseInt("maxlength", value)
		case "minimum":
			tag.Minimum, err = parseFloat("minimum", value)
		case "maximum":
			tag.Maximum, err = parseFloat("maximum", value)
		default:
			tag.OtherOptions = append(tag.OtherOptions, option)
		}
		if err != nil {
			return nil, err
		}
	}

	return &tag, nil
}
