package quiz

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Inline markup accepted around classified text. Paragraphs come from the
// docpipe extractor, which only ever emits these shapes.
const (
	sizeTag   = `<span\s+style\s*=\s*"[^"]*font-size\s*:\s*[\d.]+\s*pt[^"]*"\s*>|<font\s+size\s*=\s*"?\d+"?\s*>`
	plainTag  = `<(?:b|i|u|strong|em)>`
	openTag   = `(?:` + sizeTag + `|` + plainTag + `)`
	closeTag  = `\s*</(?:span|font|b|i|u|strong|em)>`
	closeTags = `(?:` + closeTag + `)*`

	// styledPrefix captures one or more opening tags of any kind.
	styledPrefix = `((?:` + openTag + `\s*)+)`
	// sizedPrefix captures opening tags of which at least one sets a font size.
	sizedPrefix = `((?:` + plainTag + `\s*)*(?:` + sizeTag + `)\s*(?:` + openTag + `\s*)*)`

	// Answer text must show at least one visible character
	// after any leading tags. A '<' not followed by a letter or '/' is text.
	leadingTags  = `(?:<[^>]*>\s*)*`
	visible      = `(?:[^<\s]|<[^/a-zA-Z])`
	content      = `(` + leadingTags + visible + `.*)`
	lazyContent  = `(` + leadingTags + visible + `.*?)`
	wrongContent = `(` + leadingTags + `(?:[^<\s!]|<[^/a-zA-Z]).*)`

	titleWord    = `(?:title|titel)\s*:\s*`
	quizNameWord = `(?:quiz|toets)\s*:\s*`
	pageRef      = `\(?(?:p|pp|pag|page|blz)\.?\s*\d+(?:\s*-\s*\d+)?\)?`
	questionID   = `(\d+)\)\s*`
	answerID     = `([a-d])\)\s*`
	marker       = `!`
)

// Rule recognizes one paragraph shape. Rules are tried in ascending
// Priority; the first match wins, so plain and styled spellings of the same
// category must keep their relative order.
type Rule struct {
	Priority int
	Name     string
	Category Category
	Pattern  *regexp.Regexp
	// Normalize marks rules whose text is rewritten when a font size is requested.
	Normalize bool

	extract func(sub []string) match
}

// match holds the fields a rule pulled out of a paragraph. Fields a rule
// does not capture stay at their zero value.
type match struct {
	prefix  string
	text    string
	suffix  string
	number  int
	letter  rune
	correct bool
}

func mustRule(priority int, name string, cat Category, pattern string, extract func([]string) match) Rule {
	return Rule{
		Priority:  priority,
		Name:      name,
		Category:  cat,
		Pattern:   regexp.MustCompile(`(?i)^` + pattern + `$`),
		Normalize: cat == CategoryQuestion || cat == CategoryAnswer,
		extract:   extract,
	}
}

func textOnly(sub []string) match { return match{text: sub[1]} }

func prefixedText(sub []string) match { return match{prefix: sub[1], text: sub[2]} }

func questionPlain(sub []string) match { return match{number: atoi(sub[1]), text: sub[2]} }

func questionSized(sub []string) match {
	return match{prefix: sub[1], number: atoi(sub[2]), text: sub[3]}
}

func answerPlain(correct bool) func([]string) match {
	return func(sub []string) match {
		return match{letter: letter(sub[1]), text: sub[2], correct: correct}
	}
}

func answerSized(correct bool) func([]string) match {
	return func(sub []string) match {
		return match{prefix: sub[1], letter: letter(sub[2]), text: sub[3], correct: correct}
	}
}

func answerMarkedBeforeClose(sub []string) match {
	return match{prefix: sub[1], letter: letter(sub[2]), text: sub[3], suffix: sub[4], correct: true}
}

var rules = sortRules([]Rule{
	mustRule(10, "title-plain", CategoryTitle, titleWord+`(.+)`, textOnly),
	mustRule(20, "title-styled", CategoryTitle, styledPrefix+titleWord+`(.+?)`+closeTags, prefixedText),
	mustRule(30, "quizname-plain", CategoryQuizName, quizNameWord+`(.+)`, textOnly),
	mustRule(40, "quizname-styled", CategoryQuizName, styledPrefix+quizNameWord+`(.+?)`+closeTags, prefixedText),
	mustRule(50, "pageref-styled", CategoryPageRef, sizedPrefix+pageRef+closeTags, func(sub []string) match {
		return match{prefix: sub[1]}
	}),
	mustRule(60, "question-sized", CategoryQuestion, styledPrefix+questionID+`(.+)`, questionSized),
	mustRule(70, "question-plain", CategoryQuestion, questionID+`(.+)`, questionPlain),
	mustRule(80, "answer-correct-sized", CategoryAnswer, styledPrefix+answerID+lazyContent+`\s*`+marker+`((?:`+closeTag+`)+)`, answerMarkedBeforeClose),
	mustRule(85, "answer-correct-sized-leading", CategoryAnswer, styledPrefix+answerID+marker+`\s*`+content, answerSized(true)),
	mustRule(90, "answer-correct-plain", CategoryAnswer, answerID+marker+`\s*`+content, answerPlain(true)),
	mustRule(100, "answer-wrong-sized", CategoryAnswer, styledPrefix+answerID+wrongContent, answerSized(false)),
	mustRule(110, "answer-wrong-plain", CategoryAnswer, answerID+wrongContent, answerPlain(false)),
})

// sortRules orders rules by priority and rejects duplicate priorities,
// since two rules at the same rank would make the winner depend on
// declaration order.
func sortRules(rs []Rule) []Rule {
	slices.SortStableFunc(rs, func(a, b Rule) int { return a.Priority - b.Priority })
	for i := 1; i < len(rs); i++ {
		if rs[i].Priority == rs[i-1].Priority {
			panic(fmt.Sprintf("quiz: rules %q and %q share priority %d", rs[i-1].Name, rs[i].Name, rs[i].Priority))
		}
	}
	return rs
}

// Rules returns the rule table in match order.
func Rules() []Rule {
	return slices.Clone(rules)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func letter(s string) rune {
	for _, r := range s {
		return unicode.ToLower(r)
	}
	return 0
}

var anyTag = regexp.MustCompile(`<[^>]*>`)

// stripTags removes inline markup and decodes entities, for names that are
// stored as plain text.
func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(anyTag.ReplaceAllString(s, "")))
}
