// Package packets defines the packet set of the relay protocol.
//
// Ids are partitioned by direction (by convention only):
//
//	10000-19999  client -> server (NewServerboundRegistry)
//	20000-29999  server -> client (NewClientboundRegistry)
//
// Within each range the x0000 block holds connection packets (ping, login) and the x2000 block
// game packets. Voice and chat packets are flagged as encrypted.
package packets
