package epaper

import (
	"fmt"
	"sort"
	"time"

	errs "szepaper/pkg/errors"
)

// Edition identifies one regional or content variant of the newspaper
type Edition string

const (
	BayernBase      Edition = "bayern_base"
	BayernFull      Edition = "bayern_full"
	DeutschlandBase Edition = "deutschland_base"
	DeutschlandFull Edition = "deutschland_full"
	StadtBase       Edition = "stadt_base"
	StadtFull       Edition = "stadt_full"
)

// filenameDateLayout renders dates as YYYYMMDD
const filenameDateLayout = "20060102"

// catalog maps each edition to its filename template; %s is the issue date
var catalog = map[Edition]string{
	BayernBase:      "%s_Bayernausgabe_basis.pdf",
	BayernFull:      "%s_Bayernausgabe_komplett.pdf",
	DeutschlandBase: "%s_Deutschlandausgabe_basis.pdf",
	DeutschlandFull: "%s_Deutschlandausgabe_komplett.pdf",
	StadtBase:       "%s_Stadtausgabe_basis.pdf",
	StadtFull:       "%s_Stadtausgabe_komplett.pdf",
}

// Editions returns every known edition, sorted by key
func Editions() []Edition {
	editions := make([]Edition, 0, len(catalog))
	for e := range catalog {
		editions = append(editions, e)
	}
	sort.Slice(editions, func(i, j int) bool { return editions[i] < editions[j] })
	return editions
}

// LookupEdition resolves an edition key, failing on anything outside the catalog
func LookupEdition(key string) (Edition, error) {
	e := Edition(key)
	if _, ok := catalog[e]; !ok {
		return "", errs.New(errs.ErrorTypeUnknownEdition, "unknown edition %q (see --list-editions)", key)
	}
	return e, nil
}

// Template returns the filename template, or "" for an unknown edition
func (e Edition) Template() string {
	return catalog[e]
}

func (e Edition) String() string {
	return string(e)
}

// Filename returns the remote and local filename of the edition's issue for date
func (e Edition) Filename(date time.Time) (string, error) {
	tmpl, ok := catalog[e]
	if !ok {
		return "", errs.New(errs.ErrorTypeUnknownEdition, "unknown edition %q (see --list-editions)", string(e))
	}
	return fmt.Sprintf(tmpl, date.Format(filenameDateLayout)), nil
}
