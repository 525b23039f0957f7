package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// currencyAfter lists the languages that write the currency after the amount.
var currencyAfter = map[language.Base]string{
	mustBase("ar"): "ج.م",
}

func mustBase(s string) language.Base {
	return language.MustParseBase(s)
}

// LocaleFormatter formats numbers with the grouping and digits of a language.
type LocaleFormatter struct {
	currency string
}

// NewLocaleFormatter creates a formatter that labels money with currency.
func NewLocaleFormatter(currency string) *LocaleFormatter {
	return &LocaleFormatter{currency: currency}
}

// Money formats a whole-unit amount, e.g. "EGP 1,250,000".
func (f *LocaleFormatter) Money(tag language.Tag, amount float64) string {
	p := message.NewPrinter(tag)
	base, _ := tag.Base()
	if symbol, ok := currencyAfter[base]; ok {
		return p.Sprintf("%.0f %s", amount, symbol)
	}
	return p.Sprintf("%s %.0f", f.currency, amount)
}

// Percent formats a percentage with one decimal, e.g. "62.5%".
func (f *LocaleFormatter) Percent(tag language.Tag, value float64) string {
	return message.NewPrinter(tag).Sprintf("%.1f%%", value)
}

// Number formats value with the given number of decimals.
func (f *LocaleFormatter) Number(tag language.Tag, value float64, decimals int) string {
	return message.NewPrinter(tag).Sprintf(fmt.Sprintf("%%.%df", decimals), value)
}
