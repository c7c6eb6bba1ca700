package notion

import (
	"strings"

	"github.com/jomei/notionapi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"knowledgehub/internal/domain"
)

var markdown = goldmark.New()

// BuildBodyBlocks renders the four ordered page-body sections. Pure; the
// caller handles the append batch limit.
func BuildBodyBlocks(doc domain.KnowledgeDocument) []notionapi.Block {
	var blocks []notionapi.Block

	blocks = append(blocks,
		headingBlock("Summary", notionapi.BlockTypeHeading2),
		paragraphBlock(splitRichText(doc.SummarySection)),
		dividerBlock(),
	)

	blocks = append(blocks, headingBlock("Key Points", notionapi.BlockTypeHeading2))
	for _, point := range doc.KeyPoints {
		blocks = append(blocks, numberedItemBlock(splitRichText(point)))
	}
	blocks = append(blocks, dividerBlock())

	blocks = append(blocks, headingBlock("Key Learnings & Actionable Steps", notionapi.BlockTypeHeading2))
	for _, kl := range doc.KeyLearnings {
		blocks = append(blocks,
			headingBlock(kl.Title, notionapi.BlockTypeHeading3),
			paragraphBlock(boldRichText(kl.What)),
			paragraphBlock(splitRichText("Why it matters: "+kl.WhyItMatters)),
		)
		for _, step := range kl.HowToApply {
			blocks = append(blocks, numberedItemBlock(splitRichText(step)))
		}
	}
	blocks = append(blocks, dividerBlock())

	blocks = append(blocks, headingBlock("Detailed Notes", notionapi.BlockTypeHeading2))
	blocks = append(blocks, markdownBlocks(doc.DetailedNotes)...)

	return blocks
}

// markdownBlocks parses model-written markdown into blocks: headings
// become sub-headings, lists become list items, everything else becomes
// paragraphs with bold/italic/code annotations preserved.
func markdownBlocks(notes string) []notionapi.Block {
	source := []byte(notes)
	root := markdown.Parser().Parse(gtext.NewReader(source))

	var blocks []notionapi.Block
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		blocks = append(blocks, blockFromNode(node, source)...)
	}
	return blocks
}

func blockFromNode(node ast.Node, source []byte) []notionapi.Block {
	switch n := node.(type) {
	case *ast.Heading:
		return []notionapi.Block{headingRichBlock(inlineRichText(n, source, nil), notionapi.BlockTypeHeading3)}
	case *ast.List:
		return listBlocks(n, source)
	case *ast.Paragraph:
		return []notionapi.Block{paragraphBlock(inlineRichText(n, source, nil))}
	case *ast.ThematicBreak:
		return []notionapi.Block{dividerBlock()}
	case *ast.Blockquote:
		var blocks []notionapi.Block
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			blocks = append(blocks, blockFromNode(child, source)...)
		}
		return blocks
	case *ast.FencedCodeBlock:
		return []notionapi.Block{paragraphBlock(codeRichText(n.Lines(), source))}
	case *ast.CodeBlock:
		return []notionapi.Block{paragraphBlock(codeRichText(n.Lines(), source))}
	}
	return nil
}

func listBlocks(list *ast.List, source []byte) []notionapi.Block {
	var blocks []notionapi.Block
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.List:
				// nested lists flatten to the same depth
				blocks = append(blocks, listBlocks(c, source)...)
			default:
				text := inlineRichText(child, source, nil)
				if list.IsOrdered() {
					blocks = append(blocks, numberedItemBlock(text))
				} else {
					blocks = append(blocks, bulletedItemBlock(text))
				}
			}
		}
	}
	return blocks
}

// inlineRichText flattens the inline children of a block node into rich
// text runs, carrying annotations down through emphasis spans.
func inlineRichText(node ast.Node, source []byte, ann *notionapi.Annotations) []notionapi.RichText {
	var runs []notionapi.RichText
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			text := string(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				text += " "
			}
			runs = appendRun(runs, text, ann)
		case *ast.Emphasis:
			inner := *annotationsOrZero(ann)
			if n.Level >= 2 {
				inner.Bold = true
			} else {
				inner.Italic = true
			}
			runs = append(runs, inlineRichText(n, source, &inner)...)
		case *ast.CodeSpan:
			inner := *annotationsOrZero(ann)
			inner.Code = true
			runs = appendRun(runs, string(n.Text(source)), &inner)
		case *ast.Link:
			runs = append(runs, inlineRichText(n, source, ann)...)
		case *ast.AutoLink:
			runs = appendRun(runs, string(n.URL(source)), ann)
		default:
			if child.HasChildren() {
				runs = append(runs, inlineRichText(child, source, ann)...)
			}
		}
	}
	if len(runs) == 0 {
		return splitRichText("")
	}
	return runs
}

func annotationsOrZero(ann *notionapi.Annotations) *notionapi.Annotations {
	if ann == nil {
		return &notionapi.Annotations{}
	}
	return ann
}

// appendRun chunks text at the rich-text limit with one annotation set.
func appendRun(runs []notionapi.RichText, text string, ann *notionapi.Annotations) []notionapi.RichText {
	if text == "" {
		return runs
	}
	for _, chunk := range splitRichText(text) {
		chunk.Annotations = ann
		runs = append(runs, chunk)
	}
	return runs
}

func codeRichText(lines *gtext.Segments, source []byte) []notionapi.RichText {
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	code := &notionapi.Annotations{Code: true}
	return appendRun(nil, strings.TrimRight(sb.String(), "\n"), code)
}

func headingBlock(text string, blockType notionapi.BlockType) notionapi.Block {
	return headingRichBlock(splitRichText(text), blockType)
}

func headingRichBlock(text []notionapi.RichText, blockType notionapi.BlockType) notionapi.Block {
	basic := notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: blockType}
	heading := notionapi.Heading{RichText: text}
	if blockType == notionapi.BlockTypeHeading3 {
		return &notionapi.Heading3Block{BasicBlock: basic, Heading3: heading}
	}
	return &notionapi.Heading2Block{BasicBlock: basic, Heading2: heading}
}

func paragraphBlock(text []notionapi.RichText) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeParagraph},
		Paragraph:  notionapi.Paragraph{RichText: text},
	}
}

func numberedItemBlock(text []notionapi.RichText) notionapi.Block {
	return &notionapi.NumberedListItemBlock{
		BasicBlock:       notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeNumberedListItem},
		NumberedListItem: notionapi.ListItem{RichText: text},
	}
}

func bulletedItemBlock(text []notionapi.RichText) notionapi.Block {
	return &notionapi.BulletedListItemBlock{
		BasicBlock:       notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeBulletedListItem},
		BulletedListItem: notionapi.ListItem{RichText: text},
	}
}

func dividerBlock() notionapi.Block {
	return &notionapi.DividerBlock{
		BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeDivider},
		Divider:    notionapi.Divider{},
	}
}
