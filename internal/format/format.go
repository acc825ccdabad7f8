// Package format renders money, rates and dates for display.
package format

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/diewo77/cashpro/i18n"
)

var hundred = decimal.NewFromInt(100)

func printer(lang string) *message.Printer {
	tag := language.Spanish
	if i18n.Normalize(lang) == "en" {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// Currency formats a dollar amount with two decimals and locale separators.
func Currency(lang string, amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	if f < 0 {
		return "-$" + printer(lang).Sprintf("%.2f", -f)
	}
	return "$" + printer(lang).Sprintf("%.2f", f)
}

// Percent renders a fraction as a percentage with one decimal: 0.667 -> "66.7%".
func Percent(fraction decimal.Decimal) string {
	return fraction.Mul(hundred).StringFixed(1) + "%"
}

var months = map[string][12]string{
	"es": {"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// ShortDate is day and abbreviated month: "05 mar" or "Mar 05".
func ShortDate(lang string, t time.Time) string {
	lang = i18n.Normalize(lang)
	m := months[lang][t.Month()-1]
	if lang == "en" {
		return m + " " + t.Format("02")
	}
	return t.Format("02") + " " + m
}

// FullDate adds the year to ShortDate.
func FullDate(lang string, t time.Time) string {
	if i18n.Normalize(lang) == "en" {
		return ShortDate(lang, t) + ", " + t.Format("2006")
	}
	return ShortDate(lang, t) + " " + t.Format("2006")
}
