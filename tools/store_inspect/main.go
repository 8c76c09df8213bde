package main

import (
	"chat-sync/domain/chat"
	"chat-sync/infrastructure/storage"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data/chat-sync", "Path to badger DB")
	path := flag.String("path", "/", "Subtree to dump, e.g. /general")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Path", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	subtree, err := chat.ParsePath(*path)
	if err != nil {
		log.Fatal(err)
	}
	err = storage.Scan(db, subtree, func(key string, value any, err error) {
		if err != nil {
			// One broken value must not stop the dump
			table.Append([]string{key, fmt.Sprintf("<unreadable: %v>", err)})
			return
		}
		table.Append([]string{key, fmt.Sprint(value)})
	})
	if err != nil {
		log.Fatal(err)
	}
	table.Render()
}
