package extract

import (
	"regexp"
	"strings"
)

const prefixLength = 200

var fencedBlock = regexp.MustCompile("(?s)```(\\w+)\\n(.*?)\\n```")

// Block is one fenced code block. Lang and Prefix are lower-cased; Prefix holds the
// first characters of the content and is what rules sniff for markers.
type Block struct {
	Lang    string
	Content string
	Prefix  string
}

// BlockRule assigns matching blocks to Section. When Section is already filled and
// Overflow is set, the block fills Overflow instead.
type BlockRule struct {
	Name     string
	Match    func(b Block) bool
	Section  string
	Overflow string
}

type SectionExtractor struct {
	rules []BlockRule
}

func NewSectionExtractor(rules []BlockRule) *SectionExtractor {
	return &SectionExtractor{rules: rules}
}

func (e *SectionExtractor) Extract(text string) any {
	sections := ExtractSections(text, e.rules)
	if len(sections) == 0 {
		return nil
	}
	return sections
}

// Blocks returns every language-tagged fenced block of text in order.
func Blocks(text string) []Block {
	matches := fencedBlock.FindAllStringSubmatch(text, -1)
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, newBlock(m[1], m[2]))
	}
	return blocks
}

func newBlock(lang string, content string) Block {
	prefix := []rune(strings.ToLower(content))
	if len(prefix) > prefixLength {
		prefix = prefix[:prefixLength]
	}
	return Block{
		Lang:    strings.ToLower(lang),
		Content: content,
		Prefix:  string(prefix),
	}
}

// ExtractSections classifies every block with the first matching rule. A section keeps
// the first block assigned to it; unmatched blocks are dropped.
func ExtractSections(text string, rules []BlockRule) map[string]string {
	sections := map[string]string{}
	for _, block := range Blocks(text) {
		rule, ok := Classify(block, rules)
		if !ok {
			continue
		}

		section := rule.Section
		if _, filled := sections[section]; filled {
			if rule.Overflow == "" {
				continue
			}
			section = rule.Overflow
			if _, filled := sections[section]; filled {
				continue
			}
		}
		sections[section] = strings.TrimSpace(block.Content)
	}
	return sections
}

// Classify returns the first rule matching block.
func Classify(block Block, rules []BlockRule) (BlockRule, bool) {
	for _, rule := range rules {
		if rule.Match(block) {
			return rule, true
		}
	}
	return BlockRule{}, false
}
