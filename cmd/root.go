package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dRelay/cmd/bot"
	"github.com/ValentinKolb/dRelay/cmd/serve"
	"github.com/ValentinKolb/dRelay/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "drelay",
		Short: "real-time multiplayer relay",
		Long: fmt.Sprintf(`dRelay (v%s)

A real-time relay for multiplayer games written in Go. It tracks which
players are on which level and fans out their state, chat and voice
packets to the other players of the level.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dRelay",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dRelay v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(bot.BotCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix, ws)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
