package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/healthchat/internal/config"
	"github.com/zhouzirui/healthchat/internal/model/chat"
	"github.com/zhouzirui/healthchat/internal/store"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			opts, err := cfg.StoreOptions()
			if err != nil {
				return err
			}
			kv, err := store.Open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer kv.Close()

			st := store.NewPersistence(kv).Load(cmd.Context())
			if len(st.Sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no stored sessions")
				return nil
			}
			printSessions(st)
			return nil
		},
	}
}

func printSessions(st chat.State) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "ID", "Title", "Messages"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, s := range st.Sessions {
		marker, title := "", s.Title
		if s.ID == st.ActiveID {
			marker = color.New(color.FgGreen, color.OpBold).Render("*")
			title = color.New(color.OpBold).Render(title)
		}
		table.Append([]string{marker, s.ID, title, strconv.Itoa(len(s.Messages))})
	}
	table.Render()
}
