// Package ws implements the websocket transport of the relay, used by clients that
// can not open raw sockets (browsers, some game engines).
//
// The server is a chi router with two routes:
//
//	GET /ws       upgrades to a websocket connection (gorilla/websocket)
//	GET /healthz  returns 200 while the transport accepts connections
//
// Every binary message is one frame, text messages are ignored. The read limit of a
// connection is the configured buffer size, larger messages close the connection.
//
// Accepted connections are served by base.ConnHandler, so sessions, outboxes and
// deadlines behave exactly as for the tcp and unix transports. The client side
// reuses the base client transport with a websocket connector.
package ws
