package epaper

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "szepaper/pkg/errors"
)

func TestEditions(t *testing.T) {
	editions := Editions()

	assert.Equal(t, []Edition{
		BayernBase,
		BayernFull,
		DeutschlandBase,
		DeutschlandFull,
		StadtBase,
		StadtFull,
	}, editions)

	for _, e := range editions {
		assert.Equal(t, 1, strings.Count(e.Template(), "%s"), "edition %s", e)
	}
}

func TestLookupEdition(t *testing.T) {
	e, err := LookupEdition("bayern_full")
	require.NoError(t, err)
	assert.Equal(t, BayernFull, e)

	for _, key := range []string{"", "berlin_full", "Bayern_Full", " bayern_full"} {
		_, err := LookupEdition(key)
		assert.True(t, errors.Is(err, errs.ErrUnknownEdition), "key %q", key)
	}
}

func TestFilenameForKnownIssue(t *testing.T) {
	date := time.Date(2012, time.April, 14, 0, 0, 0, 0, time.Local)

	name, err := DeutschlandFull.Filename(date)
	require.NoError(t, err)
	assert.Equal(t, "20120414_Deutschlandausgabe_komplett.pdf", name)
}

func TestFilenameMatchesTemplateForEveryEditionAndDay(t *testing.T) {
	locations := []*time.Location{time.UTC, time.FixedZone("CET", 3600), time.FixedZone("far-west", -11*3600)}

	for _, loc := range locations {
		day := time.Date(2012, time.January, 1, 0, 0, 0, 0, loc)
		for ; day.Year() == 2012; day = day.AddDate(0, 0, 1) {
			if !IsPublicationDay(day) {
				continue
			}
			stamp := fmt.Sprintf("%04d%02d%02d", day.Year(), int(day.Month()), day.Day())
			for _, e := range Editions() {
				name, err := e.Filename(day)
				require.NoError(t, err)
				assert.Equal(t, strings.Replace(e.Template(), "%s", stamp, 1), name)
			}
		}
	}
}

func TestFilenameUnknownEdition(t *testing.T) {
	_, err := Edition("nowhere").Filename(time.Now())
	assert.True(t, errors.Is(err, errs.ErrUnknownEdition))
}
