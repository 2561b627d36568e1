package calendar

import (
	"net/url"
	"time"
)

const (
	googleRenderURL = "https://calendar.google.com/calendar/render"
	outlookCompose  = "https://outlook.office.com/calendar/0/deeplink/compose"
)

func linkDetails(ev Event) string {
	details := ev.Agenda
	if ev.JoinLink != "" {
		details += "\n\nJoin: " + ev.JoinLink
	}
	return details
}

// GoogleCalendarURL builds an "add event" link for Google Calendar.
func GoogleCalendarURL(ev Event) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", ev.Summary)
	q.Set("details", linkDetails(ev))
	q.Set("location", ev.Location)
	q.Set("dates", FormatUTC(ev.Start)+"/"+FormatUTC(ev.End))
	return googleRenderURL + "?" + q.Encode()
}

// OutlookCalendarURL builds a compose deep link for Outlook on the web.
func OutlookCalendarURL(ev Event) string {
	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("subject", ev.Summary)
	q.Set("body", linkDetails(ev))
	q.Set("location", ev.Location)
	q.Set("startdt", ev.Start.UTC().Format(time.RFC3339))
	q.Set("enddt", ev.End.UTC().Format(time.RFC3339))
	return outlookCompose + "?" + q.Encode()
}
