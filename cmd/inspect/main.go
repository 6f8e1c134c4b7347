package main

import (
	"chat-core/domain"
	"chat-core/repositories"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	Colours        bool   `envconfig:"COLOURS" default:"true"`
}

// inspect dumps the User and Message tables of a badger directory, for
// poking at a database while (or after) the server runs.
func main() {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	dbPath := flag.String("db", config.BadgerFilepath, "Path to badger DB")
	flag.Parse()

	// BypassLockGuard allows opening while the server holds the lock
	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	users, err := repositories.ReadUsers(db)
	if err != nil {
		log.Fatalf("Failed to read users: %v", err)
	}
	messages, err := repositories.ReadMessages(db)
	if err != nil {
		log.Fatalf("Failed to read messages: %v", err)
	}

	fmt.Printf("Users (%d)\n", len(users))
	userTable := newTable([]string{"Identity", "Name", "Presence"})
	for _, user := range users {
		userTable.Append([]string{string(user.Identity), user.DisplayName(), presence(user, config.Colours)})
	}
	userTable.Render()

	fmt.Printf("\nMessages (%d)\n", len(messages))
	messageTable := newTable([]string{"#", "Sender", "Sent", "Text"})
	for i, message := range messages {
		messageTable.Append([]string{
			fmt.Sprintf("%d", i+1),
			string(message.Sender),
			message.Sent.Format(time.RFC3339Nano),
			message.Text,
		})
	}
	messageTable.Render()
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
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
	return table
}

func presence(user domain.User, colours bool) string {
	if user.Online {
		if colours {
			return color.New(color.FgGreen).Render("online")
		}
		return "online"
	}
	if colours {
		return color.New(color.FgGray).Render("offline")
	}
	return "offline"
}
