// Package report renders an analysis summary as console text, CSV tables
// and JSON or Markdown exports.
package report

import (
	"fmt"
	"io"
	"strings"

	"chat-analyzer/analysis"
)

const rule = "————————————————————"

// Print writes the narrative summary of a conversation
func Print(w io.Writer, s *analysis.Summary) error {
	p := &printer{w: w}
	ov := s.Overview

	p.line(rule)
	p.line("Chat analysis for %s:", strings.Join(ov.Participants, ", "))
	p.line("Date of the first chat: %s", ov.First.Time.Format(analysis.DateLayout))
	p.line("%s said: %q", ov.First.User, ov.First.Text)
	p.line("Date of the last chat: %s", ov.Last.Time.Format(analysis.DateLayout))
	p.line("%s said: %q", ov.Last.User, ov.Last.Text)
	p.line("The first and last chats are %d days apart.", ov.SpanDays)
	p.line("There are %d days with message records.", ov.ActiveDays)
	p.line("On average, %.2f messages are exchanged per day.", ov.AvgPerActiveDay)
	p.line("The hour with the highest message frequency is %d, with %d messages, accounting for %.2f%%.",
		ov.PeakHour, ov.PeakHourCount, ov.PeakHourPercent)
	p.line("The month with the highest message frequency is %s, with %d messages, accounting for %.2f%%.",
		ov.PeakMonth, ov.PeakMonthCount, ov.PeakMonthPercent)
	if ov.LongestSilence > 0 {
		p.line("The longest silence lasted %.2f hours, broken by %s who said: %q.",
			ov.LongestSilence.Hours(), ov.SilenceBreaker, ov.SilenceBreakText)
	}
	p.line(rule)

	p.line("A total of %d messages were exchanged, containing %d words.", ov.Messages, ov.Words)
	for _, u := range s.Users {
		p.line("%s sent %d messages, accounting for %.2f%% of total messages.", u.User, u.MessageCount, u.MessagePercentage)
		p.line("%s sent %d words, accounting for %.2f%% of total words.", u.User, u.TotalWords, u.WordPercentage)
	}

	if user, ok := analysis.MostActive(s.Gaps); ok {
		p.line("%s is more active with shorter average intervals.", user)
	}
	if user, ok := analysis.MostIrregular(s.Gaps); ok {
		p.line("%s's message timing is more random, making their messages unpredictable.", user)
	}

	p.line("There were %d instances of silence lasting over 12 hours.", s.Silence.Freezes)
	if user, ok := s.Silence.TopBreaker(); ok {
		p.line("%s is more likely to break the silence.", user)
	}
	if user, ok := s.Silence.TopVanisher(); ok {
		p.line("%s is more likely to suddenly vanish mid-conversation.", user)
	}
	p.line(rule)

	positive, okPos := analysis.MostPositive(s.Proportions)
	negative, okNeg := analysis.MostNegative(s.Proportions)
	if okPos && okNeg {
		p.line("It seems that %s is more positive, while %s tends to complain more during chats.", positive, negative)
	}
	if user, ok := analysis.MostVariable(s.Variability); ok {
		p.line("%s shows the most emotional variability.", user)
	}

	if len(s.Words) > 0 {
		p.line("The most frequently used word is %q, appearing %d times.", s.Words[0].Word, s.Words[0].Count)
		others := analysis.Top(s.Words[1:], 6)
		if len(others) > 0 {
			p.line("Other commonly used words include:")
			for _, wc := range others {
				p.line("%q, appearing %d times.", wc.Word, wc.Count)
			}
		}
	}

	if s.Term.Term != "" {
		p.line("A total of %d instances of %q were exchanged, averaging %.2f per day.",
			s.Term.Total, s.Term.Term, s.Term.PerActiveDay)
		for _, user := range ov.Participants {
			p.line("%s said %q %d times.", user, s.Term.Term, s.Term.PerUser[user])
		}
	}
	p.line(rule)

	return p.err
}

// printer remembers the first write error so callers check once
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
