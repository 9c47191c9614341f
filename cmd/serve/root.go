package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/dRelay/cmd/util"
	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the relay server",
		Long:    `Start the relay server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is DRELAY_<flag> (e.g. DRELAY_MAX_PENDING_PACKETS=512)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:4202", cmdUtil.WrapString("The address on which the relay will listen (e.g. 0.0.0.0:4202, /tmp/drelay.sock, ...)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int(key, 30, cmdUtil.WrapString("Read and write timeout of a connection in seconds. Connections that send nothing for this long are closed, clients should ping more often (0 disables the timeout)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, 64, cmdUtil.WrapString("The maximum size of a single frame (in KB). Connections sending larger frames are closed"))

	key = "max-pending-packets"
	ServeCmd.PersistentFlags().Int(key, 256, cmdUtil.WrapString("The number of packets queued per connection. Packets for a connection with a full queue are dropped"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address of the prometheus metrics endpoint (e.g. 0.0.0.0:9102). Empty disables the endpoint"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval (in seconds, only for tcp, 0 disables keepalive)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, -1, cmdUtil.WrapString("The linger time (in seconds, only for tcp, -1 uses the system default)"))

	key = "socket-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket write buffer (in KB, 0 uses the system default)"))

	key = "socket-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket read buffer (in KB, 0 uses the system default)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	serveCmdConfig.TransportName = viper.GetString("transport")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint:          viper.GetString("endpoint"),
		TimeoutSecond:     viper.GetInt("timeout"),
		BufferSize:        viper.GetInt("buffer-size") * 1024,
		MaxPendingPackets: viper.GetInt("max-pending-packets"),
		TCPNoDelay:        viper.GetBool("tcp-nodelay"),
		TCPKeepAliveSec:   viper.GetInt("tcp-keepalive"),
		TCPLingerSec:      viper.GetInt("tcp-linger"),
		WriteBufferSize:   viper.GetInt("socket-write-buffer") * 1024,
		ReadBufferSize:    viper.GetInt("socket-read-buffer") * 1024,
	}

	if serveCmdConfig.Transport.BufferSize <= 0 {
		return fmt.Errorf("buffer-size must be positive")
	}
	if serveCmdConfig.Transport.TimeoutSecond < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	// validates the log level
	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the relay server and stops it on SIGINT/SIGTERM
func run(_ *cobra.Command, _ []string) error {
	t, err := cmdUtil.GetServerTransport(serveCmdConfig.TransportName)
	if err != nil {
		return err
	}

	serv := server.NewRelayServer(*serveCmdConfig, t)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		if sig, ok := <-sigCh; ok {
			server.Logger.Infof("Received %s, shutting down", sig)
			serv.Close()
		}
	}()

	return serv.Serve()
}
