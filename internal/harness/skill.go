package harness

import (
	"errors"
	"strings"
	"unicode"

	yaml "go.yaml.in/yaml/v3"
	"golang.org/x/text/unicode/norm"
)

const maxSkillNameLength = 64

var errFrontmatterNotMapping = errors.New("frontmatter must be a YAML mapping")

// SanitizeSkillName folds a skill directory name into lowercase ASCII letters,
// digits and single hyphens. Accents are stripped; anything else becomes a hyphen.
func SanitizeSkillName(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range norm.NFKD.String(name) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSkillNameLength {
		out = strings.TrimRight(out[:maxSkillNameLength], "-")
	}
	if out == "" {
		return "skill"
	}
	return out
}

// RewriteFrontmatterName sets the `name` key of a markdown file's YAML frontmatter,
// adding a frontmatter block when the file has none. The body is left untouched.
func RewriteFrontmatterName(content []byte, name string) ([]byte, error) {
	front, body, ok := splitFrontmatter(string(content))
	if !ok {
		body = string(content)
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if strings.TrimSpace(front) != "" {
		var root yaml.Node
		if err := yaml.Unmarshal([]byte(front), &root); err != nil {
			return nil, err
		}
		if len(root.Content) > 0 {
			if root.Content[0].Kind != yaml.MappingNode {
				return nil, errFrontmatterNotMapping
			}
			mapping = root.Content[0]
		}
	}
	setMappingString(mapping, "name", name)

	out, err := yaml.Marshal(mapping)
	if err != nil {
		return nil, err
	}
	return []byte("---\n" + string(out) + "---\n" + body), nil
}

func splitFrontmatter(text string) (front string, body string, ok bool) {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", text, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], ""), strings.Join(lines[i+1:], ""), true
		}
	}
	return "", text, false
}

func setMappingString(mapping *yaml.Node, key string, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if strings.TrimSpace(mapping.Content[i].Value) != key {
			continue
		}
		mapping.Content[i+1] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
		return
	}
	mapping.Content = append([]*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	}, mapping.Content...)
}
