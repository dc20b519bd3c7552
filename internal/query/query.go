// Package query holds the boolean search expressions issued for one topic.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// Set is a topic described by several overlapping search expressions.
// Coverage queries are merged on the first page of every month; Paginate is
// the single broad expression walked page by page afterwards.
type Set struct {
	Topic    string   `mapstructure:"topic" json:"topic"`
	Coverage []string `mapstructure:"coverage" json:"coverage"`
	Paginate string   `mapstructure:"paginate" json:"paginate"`
}

var (
	ErrNoCoverage = errors.New("query: set has no coverage queries")
	ErrNoPaginate = errors.New("query: set has no pagination query")
)

// Validate reports whether the set can drive a monthly fetch.
func (s Set) Validate() error {
	if len(s.Coverage) == 0 {
		return ErrNoCoverage
	}
	for i, q := range s.Coverage {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("query: coverage query %d is empty", i+1)
		}
	}
	if strings.TrimSpace(s.Paginate) == "" {
		return ErrNoPaginate
	}
	return nil
}

// Label names the i-th coverage query in logs, e.g. "Q3".
func Label(i int) string {
	return fmt.Sprintf("Q%d", i+1)
}

// TrumpCovid is the default topic: the Trump administration and COVID-19.
// Both capitalisations of Covid are spelled out because the search backends
// treat them differently.
var TrumpCovid = Set{
	Topic: "trump_covid",
	Coverage: []string{
		// broad
		`(Trump OR "Donald Trump" OR "President Trump" OR "White House" OR ` +
			`"Trump administration" OR Pence) ` +
			`AND ` +
			`(Covid OR COVID OR "Covid-19" OR "COVID-19" OR coronavirus OR pandemic OR vaccine OR ` +
			`Fauci OR CDC OR masks OR lockdown OR testing OR cases OR deaths OR ` +
			`hospitalization OR "Walter Reed" OR briefing OR relief OR stimulus OR ` +
			`"task force" OR hydroxychloroquine OR treatment OR rally OR election)`,

		// personal illness
		`(Trump OR "Donald Trump") AND (Covid OR COVID OR coronavirus) AND ` +
			`(hospital OR treatment OR infected OR positive OR masks OR statements OR sick OR diagnosis)`,

		// administration response
		`("Trump administration" OR "White House" OR Pence OR "federal government") AND ` +
			`(pandemic OR Covid OR COVID) AND (response OR policy OR briefing OR "task force" OR CDC OR Fauci)`,

		// economy and politics
		`(Trump OR "President Trump") AND (coronavirus OR pandemic OR "Covid-19" OR "COVID-19") AND ` +
			`(vaccine OR relief OR stimulus OR lockdown OR economy OR election OR "Operation Warp Speed")`,

		// public health measures
		`(Trump OR "Trump administration" OR "White House") AND ` +
			`(Covid OR COVID OR coronavirus OR pandemic) AND ` +
			`(quarantine OR "social distancing" OR "public health" OR restrictions OR reopening)`,
	},
	Paginate: `(Trump OR "Donald Trump" OR "President Trump" OR "White House" OR ` +
		`"Trump administration" OR Pence) ` +
		`AND ` +
		`(Covid OR COVID OR "Covid-19" OR "COVID-19" OR coronavirus OR pandemic OR vaccine OR ` +
		`Fauci OR CDC OR masks OR lockdown OR testing OR cases OR deaths OR ` +
		`hospitalization OR briefing OR relief OR stimulus OR treatment)`,
}

// SmokeTest is the fixed query used to verify API credentials.
const SmokeTest = "artificial intelligence jobs"
