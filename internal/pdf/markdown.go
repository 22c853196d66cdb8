package pdf

import (
	"strings"
	"unicode"
)

// BlockKind classifies one parsed markdown block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockBullet
	BlockNumbered
	BlockParagraph
	BlockCallout
	BlockCode
)

// Block is one renderable unit of section content. The renderer consumes
// blocks in order; inline emphasis markers are already stripped.
type Block struct {
	Kind  BlockKind
	Level int // heading level, 1-based
	Text  string
}

// ParseBlocks converts markdown section content into renderable blocks.
// The parser is line-based and covers the subset the generator emits:
// headings, bullets, numbered lists, blockquote callouts, fenced code
// blocks, and paragraphs separated by blank lines.
func ParseBlocks(markdown string) []Block {
	var blocks []Block
	var paragraph []string
	var code []string
	inCode := false

	flush := func() {
		if len(paragraph) > 0 {
			blocks = append(blocks, Block{
				Kind: BlockParagraph,
				Text: stripInline(strings.Join(paragraph, " ")),
			})
			paragraph = nil
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if inCode {
			if strings.HasPrefix(trimmed, "```") {
				blocks = append(blocks, Block{Kind: BlockCode, Text: strings.Join(code, "\n")})
				code = nil
				inCode = false
			} else {
				code = append(code, line)
			}
			continue
		}

		switch {
		case trimmed == "":
			flush()

		case strings.HasPrefix(trimmed, "```"):
			flush()
			inCode = true

		case strings.HasPrefix(trimmed, "> "):
			flush()
			blocks = append(blocks, Block{Kind: BlockCallout, Text: stripInline(trimmed[2:])})

		case strings.HasPrefix(trimmed, "#"):
			flush()
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			text := strings.TrimSpace(trimmed[level:])
			if text != "" {
				blocks = append(blocks, Block{Kind: BlockHeading, Level: level, Text: stripInline(text)})
			}

		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			flush()
			blocks = append(blocks, Block{Kind: BlockBullet, Text: stripInline(trimmed[2:])})

		case isNumberedItem(trimmed):
			flush()
			_, text, _ := strings.Cut(trimmed, ". ")
			blocks = append(blocks, Block{Kind: BlockNumbered, Text: stripInline(text)})

		default:
			paragraph = append(paragraph, trimmed)
		}
	}
	flush()
	if inCode && len(code) > 0 {
		// Unterminated fence at end of content.
		blocks = append(blocks, Block{Kind: BlockCode, Text: strings.Join(code, "\n")})
	}

	return blocks
}

// isNumberedItem reports whether the line starts with "N. ".
func isNumberedItem(line string) bool {
	i := 0
	for i < len(line) && unicode.IsDigit(rune(line[i])) {
		i++
	}
	return i > 0 && strings.HasPrefix(line[i:], ". ")
}

// stripInline removes the inline emphasis markers the renderer does not
// reproduce.
func stripInline(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "`", "")
	return strings.TrimSpace(text)
}
