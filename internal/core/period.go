package core

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// MonthNames maps month numbers (index 0 = January) to the abbreviation
// shown in period labels.
type MonthNames [12]string

var (
	PortugueseMonths = MonthNames{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}
	EnglishMonths    = MonthNames{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	SpanishMonths    = MonthNames{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}
)

var monthTables = map[language.Base]MonthNames{
	language.MustParseBase("pt"): PortugueseMonths,
	language.MustParseBase("en"): EnglishMonths,
	language.MustParseBase("es"): SpanishMonths,
}

// MonthNamesFor resolves a BCP 47 locale tag ("pt-BR", "en") to a month table.
// Regions are ignored; unknown languages are an error.
func MonthNamesFor(locale string) (MonthNames, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return MonthNames{}, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	names, ok := monthTables[base]
	if !ok {
		return MonthNames{}, fmt.Errorf("no month names for locale %q", locale)
	}
	return names, nil
}

// Abbrev returns the abbreviation for m.
func (n MonthNames) Abbrev(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return n[m-1]
}

// PeriodLabel formats d as "YYYY-MM (Mon)". Missing dates yield "".
func (n MonthNames) PeriodLabel(d Date) string {
	if d.IsMissing() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d (%s)", d.Year(), int(d.Month()), n.Abbrev(d.Month()))
}
