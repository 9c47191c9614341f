// Package common provides the configuration structures and the logging setup shared by
// the relay server, the transports and the clients.
//
// Key Components:
//
//   - ServerConfig / ServerTransportConfig: Settings of the relay server (listen endpoint,
//     deadlines, frame size limit, outbox size, socket options, metrics endpoint).
//
//   - ClientConfig / ClientTransportConfig: Settings of relay clients (endpoint, timeouts, retries).
//
//   - Logger: Custom implementation of dragonboats logger.ILogger. All packages obtain their
//     logger via logger.GetLogger(name), InitLoggers installs the factory and sets the level.
package common
