// Package client implements the client side of the relay protocol. It is used by the
// load test bot and the integration tests, game clients implement the same protocol.
//
// The package focuses on:
//   - Typed requests on top of any relay transport (tcp, unix, ws)
//   - Request/answer matching for Login and Ping
//   - Allocation free sending, every packet is encoded into one reused region
//
// Key Components:
//
//   - NewRelayClient: Factory function that connects the transport and starts the
//     dispatch goroutine that decodes all received frames.
//
//   - Login / Ping: Block until the answer of the server arrived (or the context is done).
//     Pings are matched by id, so concurrent pings are fine.
//
//   - Packets: Channel for all other packets sent by the server (LevelDataPacket,
//     PlayerProfilesPacket, broadcasts, ServerDisconnectPacket).
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TransportName: "tcp",
//	  Transport: common.ClientTransportConfig{
//	    Endpoint:      "localhost:4202",
//	    TimeoutSecond: 5,
//	    RetryCount:    3,
//	  },
//	}
//
//	c, err := client.NewRelayClient(config, tcp.NewTCPClientTransport())
//	if err != nil {
//	  return err
//	}
//	defer c.Close()
//
//	if err := c.Login(ctx, 42, "player", data.DefaultPlayerIconData()); err != nil {
//	  return err
//	}
//	c.JoinLevel(1)
//	c.SendChat("hello")
//
//	for p := range c.Packets() {
//	  ...
//	}
package client
