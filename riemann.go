// Package riemann is a library for building Discord bots. It pairs a
// session wrapper (Bot) with an application command dispatcher (Tree)
// and wires the supporting pieces — TOML configuration, optional SQL
// persistence, optional Redis cache, background jobs and incident
// reporting — from one configuration file.
package riemann

// Library identity.
const (
	Name    = "riemann"
	Version = "0.1.0"
)

// EmbedDescriptionLength is the maximum number of characters Discord
// accepts in an embed description.
const EmbedDescriptionLength = 4096
