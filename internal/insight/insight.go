// Package insight turns franchise analytics and forecasts into ordered,
// severity-tagged recommendations rendered in two languages.
package insight

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Severity grades an insight.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeverityInfo    Severity = "info"
)

// Kind identifies an insight and selects its message templates.
type Kind string

// ParamKind selects how a parameter is formatted.
type ParamKind string

const (
	ParamMoney   ParamKind = "money"
	ParamPercent ParamKind = "percent"
	ParamCount   ParamKind = "count"
	ParamDecimal ParamKind = "decimal"
	ParamMonth   ParamKind = "month"
)

// Param is a computed value embedded in an insight's text. Month parameters
// carry their value in Text.
type Param struct {
	Name  string    `json:"name"`
	Kind  ParamKind `json:"kind"`
	Value float64   `json:"value"`
	Text  string    `json:"text,omitempty"`
}

// Formatter renders parameter values for a language.
type Formatter interface {
	Money(tag language.Tag, amount float64) string
	Percent(tag language.Tag, value float64) string
	Number(tag language.Tag, value float64, decimals int) string
}

// Text is an insight rendered in one language.
type Text struct {
	Language        string   `json:"language"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// Insight is a single recommendation. Both language variants are rendered
// from the same Params.
type Insight struct {
	Kind      Kind     `json:"kind"`
	Severity  Severity `json:"severity"`
	Params    []Param  `json:"params"`
	Primary   Text     `json:"primary"`
	Secondary Text     `json:"secondary"`
}

// Text returns the variant matching tag's base language, or the primary
// variant when neither matches.
func (i Insight) Text(tag language.Tag) Text {
	base, _ := tag.Base()
	if base.String() == i.Secondary.Language && base.String() != i.Primary.Language {
		return i.Secondary
	}
	return i.Primary
}

// finding is the language-neutral result of a rule. Recommendations whose
// index is in omit are not rendered.
type finding struct {
	kind     Kind
	severity Severity
	params   []Param
	omit     []int
}

// Engine evaluates insight rules and renders their text.
type Engine struct {
	logger    *zap.Logger
	formatter Formatter
	primary   language.Tag
	secondary language.Tag
	catalog   *catalog.Builder
	withArgs  map[string]bool
	recCount  map[Kind]int
}

// NewEngine creates an engine rendering every insight in primary and
// secondary. Unsupported languages fall back to English.
func NewEngine(logger *zap.Logger, formatter Formatter, primary, secondary language.Tag) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:    logger,
		formatter: formatter,
		catalog:   catalog.NewBuilder(catalog.Fallback(language.English)),
		withArgs:  make(map[string]bool),
		recCount:  make(map[Kind]int),
	}
	for tag, sets := range translations {
		for kind, set := range sets {
			e.set(tag, messageKey(kind, "title"), set.Title)
			e.set(tag, messageKey(kind, "description"), set.Description)
			for i, rec := range set.Recommendations {
				e.set(tag, recommendationKey(kind, i), rec)
			}
			if tag == language.English {
				e.recCount[kind] = len(set.Recommendations)
			}
		}
	}
	e.primary = e.resolve(primary)
	e.secondary = e.resolve(secondary)
	return e
}

// Languages returns the primary and secondary rendering languages.
func (e *Engine) Languages() (language.Tag, language.Tag) {
	return e.primary, e.secondary
}

func (e *Engine) set(tag language.Tag, key, msg string) {
	if err := e.catalog.SetString(tag, key, msg); err != nil {
		e.logger.Error("failed to register insight message",
			zap.String("op", "insight.NewEngine"),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	e.withArgs[argKey(tag, key)] = strings.Contains(msg, "%[")
}

func (e *Engine) resolve(tag language.Tag) language.Tag {
	base, _ := tag.Base()
	for supported := range translations {
		if supportedBase, _ := supported.Base(); supportedBase == base {
			return supported
		}
	}
	e.logger.Warn("unsupported insight language, falling back to English",
		zap.String("op", "insight.NewEngine"),
		zap.String("language", tag.String()),
	)
	return language.English
}

func (e *Engine) build(findings []finding) []Insight {
	insights := make([]Insight, 0, len(findings))
	for _, f := range findings {
		insights = append(insights, Insight{
			Kind:      f.kind,
			Severity:  f.severity,
			Params:    f.params,
			Primary:   e.render(e.primary, f),
			Secondary: e.render(e.secondary, f),
		})
	}
	return insights
}

func (e *Engine) render(tag language.Tag, f finding) Text {
	p := message.NewPrinter(tag, message.Catalog(e.catalog))
	args := make([]any, 0, len(f.params))
	for _, param := range f.params {
		args = append(args, e.format(tag, param))
	}

	text := Text{
		Language:        tag.String(),
		Title:           e.sprint(p, tag, messageKey(f.kind, "title"), args),
		Description:     e.sprint(p, tag, messageKey(f.kind, "description"), args),
		Recommendations: make([]string, 0, e.recCount[f.kind]),
	}
	for i := 0; i < e.recCount[f.kind]; i++ {
		if slices.Contains(f.omit, i) {
			continue
		}
		text.Recommendations = append(text.Recommendations, e.sprint(p, tag, recommendationKey(f.kind, i), args))
	}
	return text
}

func (e *Engine) sprint(p *message.Printer, tag language.Tag, key string, args []any) string {
	if !e.withArgs[argKey(tag, key)] {
		return p.Sprintf(key)
	}
	return p.Sprintf(key, args...)
}

func (e *Engine) format(tag language.Tag, param Param) string {
	switch param.Kind {
	case ParamMoney:
		return e.formatter.Money(tag, param.Value)
	case ParamPercent:
		return e.formatter.Percent(tag, param.Value)
	case ParamCount:
		return e.formatter.Number(tag, param.Value, 0)
	case ParamDecimal:
		return e.formatter.Number(tag, param.Value, 1)
	default:
		return param.Text
	}
}

func messageKey(kind Kind, part string) string {
	return string(kind) + "." + part
}

func recommendationKey(kind Kind, i int) string {
	return fmt.Sprintf("%s.recommendation.%d", kind, i)
}

func argKey(tag language.Tag, key string) string {
	return tag.String() + "/" + key
}
