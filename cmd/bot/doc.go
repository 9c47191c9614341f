// Package bot implements the load generator of the relay (drelay bot).
//
// Every simulated player opens its own connection, logs in with a consecutive
// account id and joins one of the configured levels. With every tick it sends its
// state (and optionally a voice frame), every 50 ticks a chat message and once
// per second a ping.
//
// Measurements are collected in a go-metrics registry:
//
//	ping.rtt            timer, round trip time of the pings
//	recv.level_data     meter, received LevelDataPackets
//	recv.broadcast      meter, received chat and voice broadcasts
//	sent                meter, packets sent
//	errors              counter, failed sends, pings and connections
//	players.connected   counter, players that logged in
package bot
