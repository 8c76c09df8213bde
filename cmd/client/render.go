package main

import (
	"chat-sync/domain/chat"
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func renderGroups(w io.Writer, groups []chat.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, color.Gray.Sprint("no group yet, /create one"))
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Group"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.AppendBulk(lo.Map(groups, func(group chat.Group, i int) []string {
		return []string{fmt.Sprint(i + 1), group.Name}
	}))
	table.Render()
}

func renderMessage(w io.Writer, message chat.Message, mine bool) {
	sender := shortID(message.SenderID)
	if mine {
		sender = color.Cyan.Sprint("me")
	} else {
		sender = color.Magenta.Sprint(sender)
	}
	fmt.Fprintf(w, "%s %s %s\n", color.Gray.Sprint(message.SentAt().Format("15:04:05")), sender, message.Text)
}

// shortID keeps the first 8 characters of an id for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
