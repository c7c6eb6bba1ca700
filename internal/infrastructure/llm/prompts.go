package llm

import (
	"strings"

	"knowledgehub/internal/domain"
)

// Word count below which the short-content addendum replaces any
// content-type-specific addendum.
const shortContentThreshold = 500

// Seeded tag list covering all categories plus cross-cutting themes.
var seededTags = []string{
	// AI & Machine Learning
	"ai", "machine-learning", "deep-learning", "llms", "prompt-engineering",
	// Marketing
	"marketing", "content-marketing", "seo", "paid-acquisition", "email-marketing",
	// Product
	"product-management", "product-strategy", "user-research", "roadmapping",
	// Growth
	"growth", "growth-loops", "retention", "activation", "onboarding",
	// Analytics
	"analytics", "data-science", "experimentation", "metrics", "dashboards",
	// Engineering
	"engineering", "architecture", "devops", "api-design", "performance",
	// Design
	"design", "ux", "ui", "design-systems", "accessibility",
	// Business
	"business", "strategy", "fundraising", "pricing", "marketplace",
	// Career
	"career", "leadership", "management", "hiring", "mentoring",
	// Productivity
	"productivity", "automation", "workflows", "tools", "note-taking",
	// Cross-cutting themes
	"tutorial", "case-study", "research", "frameworks", "best-practices",
	"startup", "enterprise", "open-source", "trends",
}

const baseSystemPrompt = `You are a knowledge base curator for a performance marketing professional building AI expertise. Your job is to transform raw content into structured, actionable knowledge entries.

## Voice & Quality
- Clear, direct, second-person voice ("You can...", "The key insight is...")
- Depth over breadth: 3 deeply detailed learning blocks beats 7 shallow ones
- Process the ENTIRE content. Never hallucinate or invent information.
- If content is inaccessible, state what you could and couldn't access.
- If extracted content exceeds ~8,000 tokens, produce a truncated analysis and note the truncation in detailed_notes.

## Output Requirements

### Title
- Concise, descriptive title (not the original article title unless it's already good)
- Should tell a reader what they'll learn

### Author
- Extract the author or creator name from the content (byline, attribution, channel name, etc.)
- Return null if the author cannot be identified from the content

### Summary (summary field)
- 3-5 sentences for the database property
- Dense and informative -- every sentence should carry weight

### Category
Choose exactly one from: AI & Machine Learning, Marketing & Growth, Ad Tech & Media, Product & Strategy, Engineering & Development, Data & Analytics, Career & Professional Development, Productivity & Systems, Design & UX, Business & Finance, Miscellaneous
If unsure between categories, pick the one most aligned with actionable application for a performance marketing professional building AI expertise. Add the secondary as a tag.
Never create new Category options. Use "Miscellaneous" as catch-all.

### Priority
- High: Directly actionable for performance marketing or AI work. Contains specific frameworks, tools, or techniques implementable this week. Time-sensitive or competitive intelligence.
- Medium: Relevant and informative but requires adaptation. Good reference material. Builds foundational understanding.
- Low: General interest or tangentially related. Background knowledge, industry trends, inspirational content without immediate application.

### Tags
Select 3-7 tags. Prefer tags from this list:
{seeded_tags}
Only suggest new tags for genuinely novel concepts not covered above. Tags must be lowercase, hyphenated.

### Summary Section (summary_section field)
- 3-5 sentence executive summary for the page body
- Answer: What is this about? Why does it matter? What's the single most important takeaway?
- Reading ONLY this section should give 80% of the value

### Key Points (key_points field)
- 5-10 concrete, specific statements
- Second-person voice ("You can...", "The key insight is...")
- One clear, self-contained statement per point (1-2 sentences)
- Ordered by importance to a practitioner, NOT by source appearance order

### Key Learnings (key_learnings field)
**This is the most important section.** 3-7 structured learning blocks.
- Each block has:
  - title: Clear, specific title for the learning
  - what: 2-3 sentences explaining the concept/framework/insight
  - why_it_matters: 1-2 sentences on relevance for performance marketing / AI / tech
  - how_to_apply: Steps must be:
    - CONCRETE ("open [tool], go to [section], do [action]") -- not vague ("think about X")
    - SEQUENTIAL -- numbered in execution order
    - SELF-CONTAINED -- followable without the original content
    - CONTEXT-SPECIFIC -- reference real tools (Google Ads, BigQuery, Claude, Notion, etc.)
    - TIME-ESTIMATED -- rough time per step in parentheses
  - resources_needed: Specific tools, accounts, or prerequisites
  - estimated_time: Total implementation duration (e.g., "10-15 minutes")

### Detailed Notes (detailed_notes field)
- Structured breakdown preserving source nuance
- Use markdown: ## for section headers, ### for subsections, - for bullet points, **bold** for emphasis
- Cap at ~2,500 words depending on source depth
- Capture: numbers, frameworks, tools mentioned, people referenced, companies discussed
`

const videoAddendum = `
## Video/Podcast-Specific Instructions
- Structure detailed_notes as section-by-section summaries with timestamp ranges as subheadings
- Include key examples and data points from each section
- Focus on spoken content from the transcript, not visual descriptions
- For videos over 45 minutes: use structured section summaries, not transcript reproduction
`

const articleAddendum = `
## Article/Blog-Specific Instructions
- Structure detailed_notes as section breakdown with paraphrased key quotes + annotations
- Capture key arguments, examples, and data points from each section
`

const threadAddendum = `
## Thread-Specific Instructions
- Structure detailed_notes as argument flow with commentary
- Preserve the thread's logical progression
`

const newsletterAddendum = `
## Newsletter-Specific Instructions
- Structure detailed_notes as topic-by-topic breakdown
- Cover each topic section distinctly
`

const shortContentAddendum = `
## Short Content Instructions
- Source is under 500 words. Produce proportionally shorter output.
- Never skip sections. If a section is N/A, write "N/A -- [reason]."
- For detailed_notes, write "N/A -- source content too brief for detailed breakdown."
- Reduce key_points to 3-5 items.
- Reduce key_learnings to 2-3 items.
`

// BuildSystemPrompt assembles the base instruction set plus exactly one
// addendum: the short-content override wins over any content-type
// addendum, and addenda are mutually exclusive.
func BuildSystemPrompt(content domain.ExtractedContent) string {
	prompt := strings.Replace(baseSystemPrompt, "{seeded_tags}", strings.Join(seededTags, ", "), 1)

	if content.WordCount < shortContentThreshold {
		return prompt + shortContentAddendum
	}

	switch content.ContentType {
	case domain.TypeVideo, domain.TypePodcast:
		return prompt + videoAddendum
	case domain.TypeThread:
		return prompt + threadAddendum
	case domain.TypeNewsletter:
		return prompt + newsletterAddendum
	case domain.TypeArticle:
		return prompt + articleAddendum
	}
	return prompt
}

// BuildUserContent assembles the user message: labeled metadata lines
// followed by the body chosen in priority order transcript > text >
// description. For a video without a transcript it returns the media URI
// so the model can process the video natively, with the metadata as the
// accompanying text.
func BuildUserContent(content domain.ExtractedContent) (text, mediaURI string) {
	var meta []string
	if content.Title != "" {
		meta = append(meta, "Title: "+content.Title)
	}
	if content.Author != "" {
		meta = append(meta, "Author: "+content.Author)
	}
	if content.SourceDomain != "" {
		meta = append(meta, "Source: "+content.SourceDomain)
	}
	if content.UserNote != "" {
		meta = append(meta, "User Note: "+content.UserNote)
	}

	if content.ContentType == domain.TypeVideo && content.Transcript == "" {
		if content.Description != "" {
			meta = append(meta, "Description: "+content.Description)
		}
		return strings.Join(meta, "\n") + "\n\n---\nPlease analyze this video.", content.URL
	}

	meta = append(meta, "\n---\n"+content.Body())
	return strings.Join(meta, "\n"), ""
}
