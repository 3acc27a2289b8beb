package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	notify "github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/notifyclient"
)

var typeColors = map[notify.Type]*color.Color{
	notify.TypeInfo:    color.New(color.FgCyan),
	notify.TypeSuccess: color.New(color.FgGreen),
	notify.TypeWarning: color.New(color.FgYellow),
	notify.TypeError:   color.New(color.FgRed),
}

func renderCompact(w io.Writer, v notifyclient.CompactView) {
	header := color.New(color.Bold)
	if v.Unread == 0 {
		header.Fprintln(w, "No unread notifications")
		return
	}

	header.Fprintf(w, "Notifications [%s]\n", v.Badge())
	for _, n := range v.Items {
		renderLine(w, n)
	}
	if v.HasMore {
		color.New(color.Faint).Fprintf(w, "  ... and %d more\n", v.Unread-len(v.Items))
	}
}

func renderFull(w io.Writer, v notifyclient.FullView) {
	color.New(color.Bold).Fprintf(w, "Unread (%d)  Read (%d)  showing %s, page %d/%d\n",
		v.UnreadTotal, v.ReadTotal, v.Tab, v.Page, v.Pages)
	if len(v.Items) == 0 {
		fmt.Fprintf(w, "  No %s notifications\n", v.Tab)
		return
	}
	for _, n := range v.Items {
		renderLine(w, n)
	}
}

func renderLine(w io.Writer, n notify.Notification) {
	c, ok := typeColors[n.Type]
	if !ok {
		c = typeColors[notify.TypeInfo]
	}
	marker := " "
	if !n.Read {
		marker = "*"
	}
	fmt.Fprintf(w, "%s %s %s  %s\n", marker, c.Sprintf("%-7s", n.Type), n.Title, ago(n.CreatedAt))
	if n.Message != "" {
		fmt.Fprintf(w, "    %s\n", n.Message)
	}
	if n.Link != nil {
		fmt.Fprintf(w, "    %s\n", *n.Link)
	}
	fmt.Fprintf(w, "    id: %s\n", n.ID)
}

func ago(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
