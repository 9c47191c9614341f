package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdUtil "github.com/ValentinKolb/dRelay/cmd/util"
	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	botConfig = &Config{}
	BotCmd    = &cobra.Command{
		Use:     "bot",
		Short:   "Load test a relay server with simulated players",
		Long:    `Connects the given number of simulated players to a relay server. Every player joins a level, sends its state with the tick rate and pings the server once per second. The statistics are printed at the end. The format of the environment variables is DRELAY_<flag> (e.g. DRELAY_PLAYERS=100)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(cmdUtil.InitConfig)

	key := "endpoint"
	BotCmd.Flags().String(key, "localhost:4202", cmdUtil.WrapString("The address of the relay server"))

	key = "players"
	BotCmd.Flags().Int(key, 10, cmdUtil.WrapString("Number of simulated players"))

	key = "levels"
	BotCmd.Flags().Int(key, 2, cmdUtil.WrapString("Number of levels the players are spread over"))

	key = "tick-rate"
	BotCmd.Flags().Int(key, 20, cmdUtil.WrapString("Player state updates per second and player"))

	key = "duration"
	BotCmd.Flags().Duration(key, 10*time.Second, cmdUtil.WrapString("Duration of the load test"))

	key = "voice"
	BotCmd.Flags().Bool(key, false, cmdUtil.WrapString("Send a voice frame with every tick"))

	key = "first-account"
	BotCmd.Flags().Int32(key, 1000, cmdUtil.WrapString("Account id of the first simulated player"))

	key = "timeout"
	BotCmd.Flags().Int(key, 5, cmdUtil.WrapString("The timeout in seconds of the client"))

	key = "retries"
	BotCmd.Flags().Int(key, 3, cmdUtil.WrapString("How many times to retry connecting"))

	key = "log-level"
	BotCmd.Flags().String(key, "warn", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	botConfig.Client = common.ClientConfig{
		TransportName: viper.GetString("transport"),
		Transport: common.ClientTransportConfig{
			Endpoint:      viper.GetString("endpoint"),
			TimeoutSecond: viper.GetInt("timeout"),
			RetryCount:    viper.GetInt("retries"),
			TCPNoDelay:    true,
		},
	}
	botConfig.Players = viper.GetInt("players")
	botConfig.Levels = viper.GetInt("levels")
	botConfig.TickRate = viper.GetInt("tick-rate")
	botConfig.Duration = viper.GetDuration("duration")
	botConfig.Voice = viper.GetBool("voice")
	botConfig.FirstAccountID = viper.GetInt32("first-account")

	// fail early for an invalid transport
	if _, err := cmdUtil.GetClientTransport(botConfig.Client.TransportName); err != nil {
		return err
	}

	return common.InitLoggers(viper.GetString("log-level"))
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Load test for dRelay servers")
	fmt.Println(botConfig.Client.String())
	fmt.Printf("Players: %d, Levels: %d, Tick Rate: %d/s, Duration: %s\n\n", botConfig.Players, botConfig.Levels, botConfig.TickRate, botConfig.Duration)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := Run(ctx, *botConfig, func() transport.IRelayClientTransport {
		t, _ := cmdUtil.GetClientTransport(botConfig.Client.TransportName)
		return t
	})
	if err != nil {
		return err
	}

	metrics.WriteOnce(stats.Registry, os.Stdout)
	return nil
}
