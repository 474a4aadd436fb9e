package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	announcementHeader = "☕ *Happy Tuesday, Coffee Lovers!* ☕\n" +
		"It's time for our weekly Random Coffee pairings! 🎉\n\n" +
		"Here are this week's wonderful pairings:\n\n"

	announcementClosing = "\n✨ *Here's the idea:* ✨\n" +
		"Tomorrow (Wednesday) would be a lovely day for a coffee chat! " +
		"It's totally optional and there's no pressure at all. 💛\n\n" +
		"📅 Feel free to schedule a quick 15-30 minute call whenever works best for both of you.\n" +
		"💬 Chat about anything - hobbies, weekend plans, fun projects, or just say hi!\n" +
		"🤝 If this week doesn't work out, no worries! There's always next Tuesday.\n\n" +
		"Have a wonderful week, everyone! 🌟"
)

// FormatAnnouncement renders the pairing groups into the channel
// announcement: header, numbered mention list, optional conversation
// topics, closing block. Pairs render as "1. <@A> & <@B>", trios as
// "2. <@C>, <@D> & <@E> (trio!)".
func FormatAnnouncement(groups []Group, topics string) string {
	var b strings.Builder
	b.WriteString(announcementHeader)

	for i, g := range groups {
		mentions := make([]string, len(g))
		for j, m := range g {
			mentions[j] = m.Mention()
		}
		line := fmt.Sprintf("%d. %s", i+1, joinNames(mentions))
		if len(g) == 3 {
			line += " (trio!)"
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if topics != "" {
		b.WriteString(topics)
	}
	b.WriteString(announcementClosing)
	return b.String()
}

// FormatErrorNotice renders the direct message sent to the error recipient
// when a run fails.
func FormatErrorNotice(context string, err error, now time.Time) string {
	return fmt.Sprintf(
		"🚨 *Random Coffee Bot Error* 🚨\n%s\n```%s```\nTimestamp: %s",
		context,
		err.Error(),
		now.UTC().Format("2006-01-02 15:04:05 UTC"),
	)
}
